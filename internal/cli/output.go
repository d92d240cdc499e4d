package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/mcoot/versusleague/internal/api/response"
	"github.com/mcoot/versusleague/internal/model"
	leaguesvc "github.com/mcoot/versusleague/internal/services/league"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
	w      io.Writer
}

// NewOutput creates a new Output formatter
func NewOutput(format string, w io.Writer) *Output {
	return &Output{format: format, w: w}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		data, _ := json.Marshal(map[string]string{"message": msg})
		fmt.Fprintln(o.w, string(data))
	} else {
		fmt.Fprintln(o.w, msg)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(o.w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case response.AuthResponse:
		o.printAuth(v)
	case response.Registry:
		o.printRegistry(v)
	case response.Paused:
		fmt.Fprintf(o.w, "Paused: %t\n", v.Paused)
	case response.Player:
		o.printPlayer(v)
	case response.Added:
		fmt.Fprintf(o.w, "%s added: %t\n", v.Account, v.Added)
	case response.Supports:
		o.printSupports(v)
	case response.Events:
		for _, ev := range v.Events {
			o.printEvent(ev)
		}
	case response.Modules:
		o.printModules(v)
	case leaguesvc.Receipt:
		o.printReceipt(v)
	case HealthResult:
		fmt.Fprintf(o.w, "Status: %s\n", v.Status)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

// HealthResult response type
type HealthResult struct {
	Status string `json:"status"`
}

func (o *Output) printAuth(a response.AuthResponse) {
	fmt.Fprintf(o.w, "Account: %s\n", a.Account)
	fmt.Fprintf(o.w, "Token expires: %s\n", a.ExpiresAt.Format("2006-01-02 15:04:05 MST"))
}

func (o *Output) printRegistry(r response.Registry) {
	fmt.Fprintf(o.w, "Registry: %s\n", r.Address)
	fmt.Fprintf(o.w, "Admin: %s\n", r.Admin)
	fmt.Fprintf(o.w, "Paused: %t\n", r.Paused)
	if r.MetadataURL != "" {
		fmt.Fprintf(o.w, "Metadata: %s\n", r.MetadataURL)
	}
	fmt.Fprintf(o.w, "Module: %s (%s)\n", shortRef(r.Module), r.Version)
}

func (o *Output) printPlayer(p response.Player) {
	fmt.Fprintf(o.w, "Player: %s\n", p.Account)
	fmt.Fprintf(o.w, "Status: %s\n", p.Status)
	fmt.Fprintf(o.w, "Record: %d-%d\n", p.Wins, p.Losses)
	if len(p.Outcomes) > 0 {
		outcomes := make([]string, len(p.Outcomes))
		for i, oc := range p.Outcomes {
			outcomes[i] = string(oc)
		}
		fmt.Fprintf(o.w, "Outcomes: %s\n", strings.Join(outcomes, " "))
	}
}

func (o *Output) printSupports(s response.Supports) {
	for _, r := range s.Results {
		switch r.Kind {
		case model.SupportBy:
			addrs := make([]string, len(r.Implementors))
			for i, a := range r.Implementors {
				addrs[i] = a.String()
			}
			fmt.Fprintf(o.w, "%s [%s]\n", r.Kind, strings.Join(addrs, " "))
		default:
			fmt.Fprintln(o.w, r.Kind)
		}
	}
}

func (o *Output) printModules(m response.Modules) {
	for _, info := range m.Modules {
		marker := " "
		if string(info.Ref) == m.Current {
			marker = "*"
		}
		fmt.Fprintf(o.w, "%s %s %s %s\n", marker, shortRef(string(info.Ref)), info.Version, strings.Join(info.Contracts, ","))
	}
}

func (o *Output) printReceipt(r leaguesvc.Receipt) {
	fmt.Fprintf(o.w, "Transaction: %s\n", r.TxID)
	for _, ev := range r.Events {
		o.printEvent(ev)
	}
}

func (o *Output) printEvent(ev model.Event) {
	fmt.Fprintf(o.w, "[%s] %s %s\n", ev.Timestamp.Format("2006-01-02 15:04:05"), ev.Type, string(ev.Payload))
}

func shortRef(ref string) string {
	if len(ref) > 12 {
		return ref[:12]
	}
	return ref
}
