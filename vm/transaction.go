package vm

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/json"
	"fmt"

	"github.com/mezonai/decash/errors"
	"github.com/mezonai/decash/jsonx"
	"github.com/mezonai/decash/types"
	"github.com/mr-tron/base58"
)

// Action is one function call inside a transaction
type Action struct {
	Method string          `json:"method"`
	Args   json.RawMessage `json:"args,omitempty"`
}

// Transaction is an ordered list of actions signed by one account. Its actions commit together
// or not at all.
type Transaction struct {
	Signer  types.AccountID `json:"signer"`
	Actions []Action        `json:"actions"`
}

// NewCallTransaction builds a single-action transaction
func NewCallTransaction(signer types.AccountID, method string, args []byte) *Transaction {
	return &Transaction{
		Signer:  signer,
		Actions: []Action{{Method: method, Args: args}},
	}
}

func (tx *Transaction) Validate() error {
	if tx.Signer == "" {
		return fmt.Errorf("transaction has no signer")
	}
	if len(tx.Actions) == 0 {
		return fmt.Errorf("transaction has no actions")
	}
	for i, action := range tx.Actions {
		if action.Method == "" {
			return fmt.Errorf("action %d has no method", i)
		}
	}
	return nil
}

// Hash is the base58 sha256 of seq|signer|actions
func (tx *Transaction) Hash(seq uint64) string {
	h := sha256.New()
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, seq)
	h.Write(buf)
	h.Write([]byte(tx.Signer))
	actions, _ := jsonx.Marshal(tx.Actions)
	h.Write(actions)
	return base58.Encode(h.Sum(nil))
}

type ReceiptStatus string

const (
	ReceiptSuccess ReceiptStatus = "success"
	ReceiptFailure ReceiptStatus = "failure"
)

// Receipt reports the outcome of a transaction. Seq and DeltaHash are only set for committed
// transactions; failed ones leave the state and the sequence untouched.
type Receipt struct {
	Seq       uint64            `json:"seq,omitempty"`
	Hash      string            `json:"hash"`
	Signer    types.AccountID   `json:"signer"`
	Status    ReceiptStatus     `json:"status"`
	Result    json.RawMessage   `json:"result,omitempty"`
	Logs      []string          `json:"logs,omitempty"`
	DeltaHash string            `json:"delta_hash,omitempty"`
	Error     *errors.CallError `json:"error,omitempty"`
}
