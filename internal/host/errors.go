package host

import (
	"errors"
	"fmt"

	"github.com/mcoot/versusleague/internal/model"
)

var (
	ErrModuleNotFound     = errors.New("module not found")
	ErrContractNotFound   = errors.New("contract not found in module")
	ErrSnapshotNotAllowed = errors.New("snapshots are not available to low-level entrypoints")
	ErrCallDepthExceeded  = errors.New("maximum call depth exceeded")
)

// CallError reports a failed sub-call. It matches model.ErrInvokeContract
// and the cause returned by the callee.
type CallError struct {
	Contract   model.ContractAddress
	Entrypoint string
	Err        error
}

func (e *CallError) Error() string {
	return fmt.Sprintf("invoke %s on contract %s: %v", e.Entrypoint, e.Contract, e.Err)
}

func (e *CallError) Unwrap() []error {
	return []error{model.ErrInvokeContract, e.Err}
}
