package interfaces

import (
	"github.com/holiman/uint256"
	"github.com/mezonai/decash/types"
)

// CallerResolver returns the identity that invoked the current call
type CallerResolver interface {
	ResolveCaller() types.AccountID
}

// MemoStorage is the persistent account -> memo sequence mapping. Get reports found=false for an
// account that never had a record written.
type MemoStorage interface {
	Get(account types.AccountID) (records []string, found bool, err error)
	Set(account types.AccountID, records []string) error
}

// NativeTransferer moves native value from the contract's own balance to target
type NativeTransferer interface {
	NativeTransfer(target types.AccountID, amount *uint256.Int) error
}
