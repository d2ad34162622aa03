package ledger

import (
	"fmt"

	"github.com/mezonai/decash/interfaces"
	"github.com/mezonai/decash/logx"
	"github.com/mezonai/decash/types"
)

// MemoLedger keeps the append-only memo history of every account. A fresh ledger is the empty
// mapping; an account appears in it only once a memo was appended for it.
type MemoLedger struct {
	storage interfaces.MemoStorage
}

func NewMemoLedger(storage interfaces.MemoStorage) *MemoLedger {
	return &MemoLedger{storage: storage}
}

// AppendMemo records "<memoText> || <price>NEAR" at the end of caller's history. The whole
// sequence is read and written back, so the cost grows with the history length.
func (l *MemoLedger) AppendMemo(caller types.AccountID, memoText, price string) error {
	record := types.FormatMemoRecord(memoText, price)

	records, found, err := l.storage.Get(caller)
	if err != nil {
		return fmt.Errorf("could not load memos of %s: %w", caller, err)
	}

	if found {
		records = append(records, record)
	} else {
		records = []string{record}
	}

	if err := l.storage.Set(caller, records); err != nil {
		return fmt.Errorf("could not store memos of %s: %w", caller, err)
	}

	logx.Debug("LEDGER", fmt.Sprintf("Appended memo #%d for %s", len(records), caller))
	return nil
}

// GetMemos returns the full history of account in append order, or an empty slice if the
// account never appended a memo
func (l *MemoLedger) GetMemos(account types.AccountID) ([]string, error) {
	records, found, err := l.storage.Get(account)
	if err != nil {
		return nil, fmt.Errorf("could not load memos of %s: %w", account, err)
	}
	if !found || records == nil {
		return []string{}, nil
	}
	return records, nil
}
