package events

import (
	"time"

	"github.com/holiman/uint256"
	"github.com/mezonai/decash/types"
)

// EventType is an enum-like string type for contract events
type EventType string

const (
	EventMemoAppended      EventType = "MemoAppended"
	EventNativeTransferred EventType = "NativeTransferred"
	EventCallFailed        EventType = "CallFailed"
)

// ContractEvent is emitted by the runtime once the outcome of a call is final
type ContractEvent interface {
	Type() EventType
	Timestamp() time.Time
	ReceiptHash() string
}

type baseEvent struct {
	receiptHash string
	timestamp   time.Time
}

func newBase(receiptHash string) baseEvent {
	return baseEvent{receiptHash: receiptHash, timestamp: time.Now()}
}

func (e *baseEvent) Timestamp() time.Time {
	return e.timestamp
}

func (e *baseEvent) ReceiptHash() string {
	return e.receiptHash
}

// MemoAppended is published after a committed append_memo
type MemoAppended struct {
	baseEvent
	Account types.AccountID
	Record  string
}

func NewMemoAppended(receiptHash string, account types.AccountID, record string) *MemoAppended {
	return &MemoAppended{baseEvent: newBase(receiptHash), Account: account, Record: record}
}

func (e *MemoAppended) Type() EventType {
	return EventMemoAppended
}

// NativeTransferred is published after a committed transfer
type NativeTransferred struct {
	baseEvent
	From   types.AccountID
	To     types.AccountID
	Amount *uint256.Int
}

func NewNativeTransferred(receiptHash string, from, to types.AccountID, amount *uint256.Int) *NativeTransferred {
	return &NativeTransferred{baseEvent: newBase(receiptHash), From: from, To: to, Amount: amount.Clone()}
}

func (e *NativeTransferred) Type() EventType {
	return EventNativeTransferred
}

// CallFailed is published when a call was aborted and its writes discarded
type CallFailed struct {
	baseEvent
	Signer types.AccountID
	Method string
	Reason string
}

func NewCallFailed(receiptHash string, signer types.AccountID, method, reason string) *CallFailed {
	return &CallFailed{baseEvent: newBase(receiptHash), Signer: signer, Method: method, Reason: reason}
}

func (e *CallFailed) Type() EventType {
	return EventCallFailed
}
