package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Pranay13257/minibacarat/internal/game"
	"github.com/Pranay13257/minibacarat/internal/server"
	"github.com/spf13/cobra"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
)

// withClient opens a gRPC connection for the duration of fn.
func withClient(ctx context.Context, opts *globalOptions, fn func(context.Context, *server.TableServiceClient) error) error {
	conn, err := grpc.NewClient(opts.grpcAddr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return fmt.Errorf("connect %s: %w", opts.grpcAddr, err)
	}
	defer conn.Close()

	ctx, cancel := context.WithTimeout(ctx, opts.timeout)
	defer cancel()
	return fn(ctx, server.NewTableServiceClient(conn))
}

// decodeStruct maps a Struct reply onto v through its JSON form.
func decodeStruct(s *structpb.Struct, v any) error {
	raw, err := protojson.Marshal(s)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, v)
}

func newStateCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "state",
		Short: "Print the current table state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withClient(cmd.Context(), opts, func(ctx context.Context, c *server.TableServiceClient) error {
				reply, err := c.GetState(ctx)
				if err != nil {
					return err
				}
				var s game.GameState
				if err := decodeStruct(reply, &s); err != nil {
					return fmt.Errorf("decode state: %w", err)
				}
				view, err := renderState(s)
				if err != nil {
					return err
				}
				fmt.Fprint(cmd.OutOrStdout(), view)
				return nil
			})
		},
	}
}

func newStatsCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Print the stored round aggregates",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withClient(cmd.Context(), opts, func(ctx context.Context, c *server.TableServiceClient) error {
				reply, err := c.GetStats(ctx)
				if err != nil {
					return err
				}
				var st game.Stats
				if err := decodeStruct(reply, &st); err != nil {
					return fmt.Errorf("decode stats: %w", err)
				}
				view, err := renderStats(st)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), view)
				return nil
			})
		},
	}
}

func newHistoryCmd(opts *globalOptions) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List the most recent stored rounds",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withClient(cmd.Context(), opts, func(ctx context.Context, c *server.TableServiceClient) error {
				reply, err := c.ListRounds(ctx, limit)
				if err != nil {
					return err
				}
				var body struct {
					Rounds []server.RoundView `json:"rounds"`
				}
				if err := decodeStruct(reply, &body); err != nil {
					return fmt.Errorf("decode rounds: %w", err)
				}
				view, err := renderHistory(body.Rounds)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), view)
				return nil
			})
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of rounds to list")
	return cmd
}
