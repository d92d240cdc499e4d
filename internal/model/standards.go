package model

import (
	"encoding/json"
	"fmt"
)

// StandardID names an interface standard, e.g. "CIS-0"
type StandardID string

// SupportKind is the answer to a standards query
type SupportKind string

const (
	NoSupport SupportKind = "NoSupport"
	Support   SupportKind = "Support"
	SupportBy SupportKind = "SupportBy"
)

// SupportResult answers a single standards query. Implementors is set only
// for SupportBy and may be empty.
type SupportResult struct {
	Kind         SupportKind
	Implementors []ContractAddress
}

type supportResultJSON struct {
	Kind         SupportKind        `json:"kind"`
	Implementors *[]ContractAddress `json:"implementors,omitempty"`
}

func (r SupportResult) MarshalJSON() ([]byte, error) {
	out := supportResultJSON{Kind: r.Kind}
	if r.Kind == SupportBy {
		list := r.Implementors
		if list == nil {
			list = []ContractAddress{}
		}
		out.Implementors = &list
	}
	return json.Marshal(out)
}

func (r *SupportResult) UnmarshalJSON(data []byte) error {
	var in supportResultJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	switch in.Kind {
	case NoSupport, Support:
		*r = SupportResult{Kind: in.Kind}
	case SupportBy:
		list := []ContractAddress{}
		if in.Implementors != nil {
			list = *in.Implementors
		}
		*r = SupportResult{Kind: SupportBy, Implementors: list}
	default:
		return fmt.Errorf("unknown support kind %q", in.Kind)
	}
	return nil
}
