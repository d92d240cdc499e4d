package model

import "time"

// ModuleRef is the content hash of a deployed module, hex encoded
type ModuleRef string

// ModuleInfo describes a deployed module
type ModuleInfo struct {
	Ref        ModuleRef `json:"ref"`
	Version    string    `json:"version"`
	Contracts  []string  `json:"contracts"`
	DeployedAt time.Time `json:"deployedAt"`
}

// Instance is a contract instance as persisted by the store
type Instance struct {
	Address      ContractAddress
	ContractName string
	ModuleRef    ModuleRef
	State        []byte
}

// Clone returns a deep copy of the instance
func (i *Instance) Clone() *Instance {
	if i == nil {
		return nil
	}
	cp := *i
	cp.State = append([]byte(nil), i.State...)
	return &cp
}

// Credential is a stored account password hash
type Credential struct {
	Account      AccountID
	PasswordHash string
	CreatedAt    time.Time
}
