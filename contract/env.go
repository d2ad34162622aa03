package contract

import "github.com/mezonai/decash/interfaces"

// Env is what the runtime hands to a contract method for the duration of one call
type Env interface {
	interfaces.CallerResolver

	// Memos is the persistent memo mapping as seen by the current call
	Memos() interfaces.MemoStorage

	// Transferer moves value out of the contract's balance
	Transferer() interfaces.NativeTransferer

	// Log attaches a message to the call receipt
	Log(message string)
}
