package ledger

import "errors"

var (
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrInvalidRecipient    = errors.New("invalid recipient")
	ErrInvalidAmount       = errors.New("invalid amount")
)
