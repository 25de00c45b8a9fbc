package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/Pranay13257/minibacarat/internal/game"
	"github.com/Pranay13257/minibacarat/internal/server"
	"github.com/gorilla/websocket"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

// frame is the common envelope of every server message.
type frame struct {
	Action  string `json:"action"`
	Message string `json:"message"`
}

func dial(ctx context.Context, url string) (*websocket.Conn, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", url, err)
	}
	return conn, nil
}

func newWatchCmd(opts *globalOptions) *cobra.Command {
	var once bool

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Stream the table state as it changes",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runWatch(cmd.Context(), opts.wsURL, once, cmd.OutOrStdout())
		},
	}
	cmd.Flags().BoolVar(&once, "once", false, "print the current state and exit")
	return cmd
}

func runWatch(ctx context.Context, url string, once bool, out io.Writer) error {
	conn, err := dial(ctx, url)
	if err != nil {
		return err
	}
	defer conn.Close()

	go func() {
		<-ctx.Done()
		conn.Close()
	}()

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("read: %w", err)
		}

		var f frame
		if err := json.Unmarshal(raw, &f); err != nil {
			continue
		}
		switch f.Action {
		case server.ActionGameState:
			var s game.GameState
			if err := json.Unmarshal(raw, &s); err != nil {
				return fmt.Errorf("decode state: %w", err)
			}
			view, err := renderState(s)
			if err != nil {
				return err
			}
			if !once {
				fmt.Fprint(out, "\033[H\033[2J")
			}
			fmt.Fprint(out, view)
			if once {
				return nil
			}

		case server.ActionGameResult:
			var res game.RoundResult
			if err := json.Unmarshal(raw, &res); err != nil {
				return fmt.Errorf("decode result: %w", err)
			}
			fmt.Fprintln(out, pterm.Success.Sprintf("round %d: %s", res.Round, res.Winner))

		case server.ActionError:
			fmt.Fprintln(out, pterm.Error.Sprint(f.Message))
		}
	}
}

func newSendCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "send ACTION [key=value ...]",
		Short: "Send one action and print the reply",
		Example: `  tablectl send update_players player_id=1 is_active=true
  tablectl send add_card card=AH
  tablectl send set_game_mode mode=vip`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := buildRequest(args[0], args[1:])
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), opts.timeout)
			defer cancel()
			return runSend(ctx, opts.wsURL, req, cmd.OutOrStdout())
		},
	}
}

// buildRequest turns key=value pairs into an action frame. Booleans and
// integers are sent as JSON values; identifiers and names stay strings.
func buildRequest(action string, pairs []string) (map[string]any, error) {
	req := map[string]any{"action": action}
	for _, p := range pairs {
		key, value, ok := strings.Cut(p, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("expected key=value, got %q", p)
		}
		switch key {
		case "player_id", "table_number", "card", "mode", "winner":
			req[key] = value
			continue
		}
		if b, err := strconv.ParseBool(value); err == nil {
			req[key] = b
		} else if n, err := strconv.Atoi(value); err == nil {
			req[key] = n
		} else {
			req[key] = value
		}
	}
	return req, nil
}

var errRejected = errors.New("action rejected")

// runSend writes req and waits for the direct replies to it. auto_deal
// answers twice: once when it starts and once when the round is dealt.
func runSend(ctx context.Context, url string, req map[string]any, out io.Writer) error {
	conn, err := dial(ctx, url)
	if err != nil {
		return err
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		conn.SetReadDeadline(deadline)
		conn.SetWriteDeadline(deadline)
	}
	if err := conn.WriteJSON(req); err != nil {
		return fmt.Errorf("send: %w", err)
	}

	expected := 1
	if req["action"] == server.ActionAutoDeal {
		expected = 2
	}

	for expected > 0 {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			return fmt.Errorf("read: %w", err)
		}
		var f frame
		if err := json.Unmarshal(raw, &f); err != nil {
			continue
		}
		switch f.Action {
		case server.ActionSuccess:
			fmt.Fprintln(out, pterm.Success.Sprint(f.Message))
			expected--
		case server.ActionError:
			fmt.Fprintln(out, pterm.Error.Sprint(f.Message))
			return fmt.Errorf("%w: %s", errRejected, f.Message)
		case server.ActionStats:
			var st game.Stats
			if err := json.Unmarshal(raw, &st); err != nil {
				return fmt.Errorf("decode stats: %w", err)
			}
			view, err := renderStats(st)
			if err != nil {
				return err
			}
			fmt.Fprintln(out, view)
			expected--
		}
	}
	return nil
}
