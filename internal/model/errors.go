package model

import "errors"

// Contract errors. These abort the call that produced them and discard all
// of its writes and events.
var (
	ErrParse          = errors.New("failed to parse parameter")
	ErrUnauthorized   = errors.New("sender is not the admin")
	ErrContractPaused = errors.New("contract is paused")
	ErrPlayerNotFound = errors.New("player not found")

	ErrEventSinkFull      = errors.New("event log is full")
	ErrEventSinkMalformed = errors.New("event is malformed")

	ErrInvokeContract = errors.New("contract invocation failed")

	ErrUpgradeMissingModule      = errors.New("upgrade failed: module does not exist")
	ErrUpgradeMissingContract    = errors.New("upgrade failed: module does not contain the contract")
	ErrUpgradeUnsupportedVersion = errors.New("upgrade failed: unsupported module version")

	ErrStateLayout = errors.New("stored state layout is not served by this module")
)

// Host and storage errors
var (
	ErrInstanceNotFound   = errors.New("contract instance not found")
	ErrEntrypointNotFound = errors.New("entrypoint not found")
	ErrModuleExists       = errors.New("module already deployed")
	ErrReadOnly           = errors.New("state is read-only in this call")
)

// Account errors
var (
	ErrAccountNotFound = errors.New("account not found")
	ErrAccountExists   = errors.New("account already exists")
)
