package model

import (
	"fmt"
	"strconv"
	"strings"
)

// AccountID identifies an externally owned account
type AccountID string

// ContractAddress identifies a contract instance hosted by the runtime
type ContractAddress struct {
	Index    uint64 `json:"index"`
	Subindex uint64 `json:"subindex"`
}

func (c ContractAddress) String() string {
	return fmt.Sprintf("%d,%d", c.Index, c.Subindex)
}

// ParseContractAddress parses the "<index>,<subindex>" form. A bare index
// implies subindex 0.
func ParseContractAddress(s string) (ContractAddress, error) {
	idx, sub, found := strings.Cut(strings.TrimSpace(s), ",")
	index, err := strconv.ParseUint(idx, 10, 64)
	if err != nil {
		return ContractAddress{}, fmt.Errorf("invalid contract index %q: %w", idx, err)
	}
	var subindex uint64
	if found {
		subindex, err = strconv.ParseUint(sub, 10, 64)
		if err != nil {
			return ContractAddress{}, fmt.Errorf("invalid contract subindex %q: %w", sub, err)
		}
	}
	return ContractAddress{Index: index, Subindex: subindex}, nil
}

// AddressKind distinguishes account addresses from contract addresses
type AddressKind uint8

const (
	AddressAccount AddressKind = iota + 1
	AddressContract
)

// Address is either an account or a contract. It is comparable and can be
// used directly as a map key, including as a JSON object key.
type Address struct {
	Kind     AddressKind
	Account  AccountID
	Contract ContractAddress
}

// AccountAddress wraps an account id
func AccountAddress(id AccountID) Address {
	return Address{Kind: AddressAccount, Account: id}
}

// ContractAddr wraps a contract address
func ContractAddr(c ContractAddress) Address {
	return Address{Kind: AddressContract, Contract: c}
}

// IsZero reports whether the address was never set
func (a Address) IsZero() bool {
	return a.Kind == 0
}

func (a Address) String() string {
	switch a.Kind {
	case AddressAccount:
		return "account:" + string(a.Account)
	case AddressContract:
		return "contract:" + a.Contract.String()
	default:
		return ""
	}
}

// ParseAddress parses "account:<id>" or "contract:<index>,<subindex>".
// A string without a prefix is treated as an account id.
func ParseAddress(s string) (Address, error) {
	kind, rest, found := strings.Cut(s, ":")
	if !found {
		if s == "" {
			return Address{}, fmt.Errorf("empty address")
		}
		return AccountAddress(AccountID(s)), nil
	}
	switch kind {
	case "account":
		if rest == "" {
			return Address{}, fmt.Errorf("empty account id")
		}
		return AccountAddress(AccountID(rest)), nil
	case "contract":
		c, err := ParseContractAddress(rest)
		if err != nil {
			return Address{}, err
		}
		return ContractAddr(c), nil
	default:
		return Address{}, fmt.Errorf("unknown address kind %q", kind)
	}
}

func (a Address) MarshalText() ([]byte, error) {
	if a.IsZero() {
		return nil, fmt.Errorf("cannot encode empty address")
	}
	return []byte(a.String()), nil
}

func (a *Address) UnmarshalText(text []byte) error {
	parsed, err := ParseAddress(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}
