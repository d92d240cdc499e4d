package redis

import (
	"fmt"

	"github.com/mcoot/versusleague/internal/model"
)

// Key prefix for all registry data
const keyPrefix = "vlm"

// instanceKey returns the Redis key for a contract instance
func instanceKey(addr model.ContractAddress) string {
	return fmt.Sprintf("%s:instance:%d:%d", keyPrefix, addr.Index, addr.Subindex)
}

// eventsKey returns the Redis key for the LIST of a contract's events
func eventsKey(addr model.ContractAddress) string {
	return fmt.Sprintf("%s:events:%d:%d", keyPrefix, addr.Index, addr.Subindex)
}

// contractSeqKey returns the Redis key for the contract index counter
func contractSeqKey() string {
	return fmt.Sprintf("%s:seq:contract", keyPrefix)
}

// credentialKey returns the Redis key for an account credential
func credentialKey(account model.AccountID) string {
	return fmt.Sprintf("%s:credential:%s", keyPrefix, account)
}
