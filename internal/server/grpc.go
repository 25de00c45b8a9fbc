package server

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Pranay13257/minibacarat/internal/config"
	"github.com/Pranay13257/minibacarat/internal/game"
	"github.com/Pranay13257/minibacarat/internal/game/cards"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/keepalive"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
)

// TableServiceName is the fully qualified gRPC service name.
const TableServiceName = "baccarat.v1.TableService"

const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 500
)

// RoundHistory lists stored rounds, newest first.
type RoundHistory interface {
	Recent(ctx context.Context, limit int) ([]game.RoundRecord, error)
}

// TableServiceServer is the read-only table API. Messages are well-known
// types so no generated code is needed.
type TableServiceServer interface {
	GetState(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	GetStats(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	ListRounds(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

// TableService serves snapshots and aggregates of the table.
type TableService struct {
	table   *game.Table
	history RoundHistory
	logger  *zap.Logger
}

var _ TableServiceServer = (*TableService)(nil)

// NewTableService creates the service. history may be nil, in which case
// ListRounds is unimplemented.
func NewTableService(table *game.Table, history RoundHistory, logger *zap.Logger) *TableService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TableService{table: table, history: history, logger: logger}
}

func (s *TableService) GetState(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	return toStruct(s.table.Snapshot())
}

func (s *TableService) GetStats(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	st, err := s.table.Stats(ctx)
	if err != nil {
		return nil, statusFromError(fmt.Errorf("%w: %w", game.ErrStore, err))
	}
	return toStruct(st)
}

// ListRounds accepts an optional {"limit": n}.
func (s *TableService) ListRounds(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if s.history == nil {
		return nil, status.Error(codes.Unimplemented, "round history not available")
	}

	limit := defaultHistoryLimit
	if v, ok := req.GetFields()["limit"]; ok {
		n := int(v.GetNumberValue())
		if n <= 0 || n > maxHistoryLimit {
			return nil, status.Errorf(codes.InvalidArgument, "limit must be between 1 and %d", maxHistoryLimit)
		}
		limit = n
	}

	records, err := s.history.Recent(ctx, limit)
	if err != nil {
		return nil, statusFromError(fmt.Errorf("%w: %w", game.ErrStore, err))
	}
	rounds := make([]RoundView, len(records))
	for i, rec := range records {
		rounds[i] = newRoundView(rec)
	}
	return toStruct(map[string]any{"rounds": rounds})
}

// RoundView is the wire form of a stored round in ListRounds.
type RoundView struct {
	ID            string   `json:"id"`
	RecordedAt    string   `json:"recorded_at"`
	Round         int      `json:"round"`
	Winner        string   `json:"winner"`
	PlayerCards   []string `json:"player_cards"`
	BankerCards   []string `json:"banker_cards"`
	PlayerScore   int      `json:"player_score"`
	BankerScore   int      `json:"banker_score"`
	IsSuperSix    bool     `json:"is_super_six"`
	PlayerPair    bool     `json:"player_pair"`
	BankerPair    bool     `json:"banker_pair"`
	NaturalType   string   `json:"natural_type"`
	PlayerNatural bool     `json:"player_natural"`
	BankerNatural bool     `json:"banker_natural"`
	AutoDealt     bool     `json:"auto_dealt"`
	Manual        bool     `json:"manual"`
}

func newRoundView(rec game.RoundRecord) RoundView {
	return RoundView{
		ID:            rec.ID.String(),
		RecordedAt:    rec.RecordedAt.UTC().Format(time.RFC3339),
		Round:         rec.Round,
		Winner:        rec.Winner.String(),
		PlayerCards:   cards.Strings(rec.PlayerCards),
		BankerCards:   cards.Strings(rec.BankerCards),
		PlayerScore:   rec.PlayerScore,
		BankerScore:   rec.BankerScore,
		IsSuperSix:    rec.SuperSix,
		PlayerPair:    rec.PlayerPair,
		BankerPair:    rec.BankerPair,
		NaturalType:   rec.Natural.String(),
		PlayerNatural: rec.PlayerNatural,
		BankerNatural: rec.BankerNatural,
		AutoDealt:     rec.AutoDealt,
		Manual:        rec.Manual,
	}
}

// toStruct converts v through its JSON form so the wire names match the
// WebSocket messages.
func toStruct(v any) (*structpb.Struct, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode: %v", err)
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, status.Errorf(codes.Internal, "encode: %v", err)
	}
	out, err := structpb.NewStruct(m)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode: %v", err)
	}
	return out, nil
}

// statusFromError maps table errors onto gRPC codes.
func statusFromError(err error) error {
	switch game.KindOf(err) {
	case game.KindValidation:
		return status.Error(codes.InvalidArgument, err.Error())
	case game.KindPolicy:
		return status.Error(codes.FailedPrecondition, err.Error())
	case game.KindResource:
		return status.Error(codes.Unavailable, err.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}

func _TableService_GetState_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(emptypb.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(TableServiceServer).GetState(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + TableServiceName + "/GetState"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(TableServiceServer).GetState(ctx, req.(*emptypb.Empty))
	}
	return interceptor(ctx, in, info, handler)
}

func _TableService_GetStats_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(emptypb.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(TableServiceServer).GetStats(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + TableServiceName + "/GetStats"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(TableServiceServer).GetStats(ctx, req.(*emptypb.Empty))
	}
	return interceptor(ctx, in, info, handler)
}

func _TableService_ListRounds_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(TableServiceServer).ListRounds(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + TableServiceName + "/ListRounds"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(TableServiceServer).ListRounds(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

// TableService_ServiceDesc describes the service for grpc.Server.
var TableService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: TableServiceName,
	HandlerType: (*TableServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "GetState", Handler: _TableService_GetState_Handler},
		{MethodName: "GetStats", Handler: _TableService_GetStats_Handler},
		{MethodName: "ListRounds", Handler: _TableService_ListRounds_Handler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "baccarat/v1/table.proto",
}

func RegisterTableServiceServer(s grpc.ServiceRegistrar, srv TableServiceServer) {
	s.RegisterService(&TableService_ServiceDesc, srv)
}

// TableServiceClient calls TableService.
type TableServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewTableServiceClient(cc grpc.ClientConnInterface) *TableServiceClient {
	return &TableServiceClient{cc: cc}
}

func (c *TableServiceClient) GetState(ctx context.Context, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, "/"+TableServiceName+"/GetState", &emptypb.Empty{}, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *TableServiceClient) GetStats(ctx context.Context, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, "/"+TableServiceName+"/GetStats", &emptypb.Empty{}, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *TableServiceClient) ListRounds(ctx context.Context, limit int, opts ...grpc.CallOption) (*structpb.Struct, error) {
	in, err := structpb.NewStruct(map[string]any{"limit": limit})
	if err != nil {
		return nil, err
	}
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, "/"+TableServiceName+"/ListRounds", in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// NewGRPCServer builds the server with the table service, the standard
// health service and the recovery and logging interceptors.
func NewGRPCServer(cfg config.GRPCConfig, svc *TableService, logger *zap.Logger) (*grpc.Server, *health.Server) {
	if logger == nil {
		logger = zap.NewNop()
	}

	opts := []grpc.ServerOption{
		grpc.UnaryInterceptor(ChainUnaryInterceptors(
			RecoveryInterceptor(logger),
			LoggingInterceptor(logger),
		)),
		grpc.KeepaliveParams(keepalive.ServerParameters{
			Time:    30 * time.Second,
			Timeout: 10 * time.Second,
		}),
	}
	if cfg.MaxConcurrentStreams > 0 {
		opts = append(opts, grpc.MaxConcurrentStreams(uint32(cfg.MaxConcurrentStreams)))
	}

	srv := grpc.NewServer(opts...)
	RegisterTableServiceServer(srv, svc)

	hs := health.NewServer()
	hs.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	hs.SetServingStatus(TableServiceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(srv, hs)

	return srv, hs
}
