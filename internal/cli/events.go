package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mcoot/versusleague/internal/api/response"
)

func newEventsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "events",
		Short: "Registry event log commands",
	}

	cmd.AddCommand(newEventsListCmd())
	cmd.AddCommand(newEventsStreamCmd())

	return cmd
}

func newEventsListCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Show the newest committed events, oldest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var result response.Events
			if err := client.Get(cmd.Context(), "/api/v1/registry/events?limit="+strconv.Itoa(limit), &result); err != nil {
				return err
			}
			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 100, "Number of events to show")

	return cmd
}

func newEventsStreamCmd() *cobra.Command {
	var (
		jsonOutput bool
		replay     int
	)

	cmd := &cobra.Command{
		Use:   "stream",
		Short: "Stream registry events as they are committed",
		Long: `Connect to the registry's SSE endpoint and print events in real-time.

Events include:
  - AdminChanged: the admin role moved to a new address
  - BattleResult: a battle outcome was recorded
  - Upgraded: the registry's code was replaced

Press Ctrl+C to disconnect.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()
			return streamEvents(ctx, cmd.OutOrStdout(), replay, jsonOutput)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output events as JSON lines")
	cmd.Flags().IntVar(&replay, "replay", 0, "Replay this many committed events before live ones")

	return cmd
}

// SSEEvent is one parsed server-sent event
type SSEEvent struct {
	ID    string `json:"id,omitempty"`
	Event string `json:"event"`
	Data  string `json:"data"`
}

func streamEvents(ctx context.Context, w io.Writer, replay int, jsonOutput bool) error {
	url := strings.TrimSuffix(cfg.ServerURL, "/") + "/api/v1/registry/events/stream"
	if replay > 0 {
		url += "?limit=" + strconv.Itoa(replay)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")

	// No timeout for SSE
	resp, err := (&http.Client{}).Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("connection failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	err = parseSSE(resp.Body, func(ev SSEEvent) {
		printSSEEvent(w, ev, jsonOutput)
	})
	if err != nil && ctx.Err() == nil {
		return fmt.Errorf("stream error: %w", err)
	}
	if !jsonOutput {
		fmt.Fprintln(w, "Disconnected")
	}
	return nil
}

// parseSSE reads an event stream until EOF, calling fn for every complete
// event. Comment lines are skipped and multi-line data is joined with \n.
func parseSSE(r io.Reader, fn func(SSEEvent)) error {
	scanner := bufio.NewScanner(r)
	var (
		current   SSEEvent
		dataLines []string
	)

	for scanner.Scan() {
		line := scanner.Text()

		switch {
		case line == "":
			if current.Event != "" || len(dataLines) > 0 {
				current.Data = strings.Join(dataLines, "\n")
				fn(current)
			}
			current = SSEEvent{}
			dataLines = nil
		case strings.HasPrefix(line, ":"):
		case strings.HasPrefix(line, "id: "):
			current.ID = strings.TrimPrefix(line, "id: ")
		case strings.HasPrefix(line, "event: "):
			current.Event = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: "):
			dataLines = append(dataLines, strings.TrimPrefix(line, "data: "))
		}
	}
	return scanner.Err()
}

func printSSEEvent(w io.Writer, ev SSEEvent, jsonOutput bool) {
	if jsonOutput {
		data, _ := json.Marshal(ev)
		fmt.Fprintln(w, string(data))
		return
	}

	if ev.Event == "connected" {
		fmt.Fprintln(w, "Connected to registry event stream")
		return
	}
	// Committed events carry the whole event as data; show just the payload
	var decoded struct {
		Payload json.RawMessage `json:"payload"`
	}
	display := ev.Data
	if err := json.Unmarshal([]byte(ev.Data), &decoded); err == nil && len(decoded.Payload) > 0 {
		display = string(decoded.Payload)
	}
	fmt.Fprintf(w, "[%s] %s: %s\n", ev.ID, ev.Event, display)
}
