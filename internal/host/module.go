// Package host runs contract modules against durable storage. It owns call
// dispatch, transactions, the snapshot commit at normal return, sub-calls,
// code upgrade and the event log.
package host

import (
	"context"
)

// Mode controls how the dispatcher treats an entrypoint's state
type Mode int

const (
	// ModeView may read a snapshot. Writes are rejected.
	ModeView Mode = iota
	// ModeMutable may take a snapshot. The snapshot is written back at
	// normal return and before every sub-call.
	ModeMutable
	// ModeLowLevel works on the raw root with ReadRoot and WriteRoot only.
	// Nothing is written back automatically.
	ModeLowLevel
)

func (m Mode) String() string {
	switch m {
	case ModeView:
		return "view"
	case ModeMutable:
		return "mutable"
	case ModeLowLevel:
		return "low-level"
	default:
		return "unknown"
	}
}

// Handler runs an entrypoint. A non-nil result is JSON encoded as the
// call's return value.
type Handler func(ctx context.Context, call *Call) (any, error)

// Entrypoint is a named, callable function of a contract
type Entrypoint struct {
	Name string
	Mode Mode
	// ParamSchema is an optional JSON Schema (draft 2020-12) the parameter
	// must satisfy before the handler runs
	ParamSchema string
	Handler     Handler
}

// Contract is a named contract inside a module. Init runs as a mutable
// entrypoint against an empty root.
type Contract struct {
	Name        string
	Init        Entrypoint
	Entrypoints []Entrypoint
}

// Module is a deployable unit of contract code
type Module struct {
	Name string
	// Version is the module's ABI version (semver)
	Version   string
	Contracts []Contract
}
