package vm

import (
	"github.com/mezonai/decash/db"
	"github.com/mezonai/decash/interfaces"
	"github.com/mezonai/decash/store"
	"github.com/mezonai/decash/types"
)

type memoWrite struct {
	account types.AccountID
	record  string
}

// recordingMemoStore remembers the last record of every write so the runtime can publish
// MemoAppended events after commit
type recordingMemoStore struct {
	*store.MemoStore
	writes []memoWrite
}

func (s *recordingMemoStore) Set(account types.AccountID, records []string) error {
	if err := s.MemoStore.Set(account, records); err != nil {
		return err
	}
	if len(records) > 0 {
		s.writes = append(s.writes, memoWrite{account: account, record: records[len(records)-1]})
	}
	return nil
}

// session is the environment of a single call. Every write goes to overlay and only reaches the
// database if the runtime commits it.
type session struct {
	caller  types.AccountID
	overlay *db.OverlayProvider
	memos   *recordingMemoStore
	bank    *Bank
	logs    []string
}

func newSession(base db.DatabaseProvider, caller, contractID types.AccountID) (*session, error) {
	overlay := db.NewOverlayProvider(base)

	memoStore, err := store.NewMemoStore(overlay)
	if err != nil {
		return nil, err
	}
	accounts, err := store.NewGenericAccountStore(overlay)
	if err != nil {
		return nil, err
	}

	return &session{
		caller:  caller,
		overlay: overlay,
		memos:   &recordingMemoStore{MemoStore: memoStore},
		bank:    newBank(accounts, contractID),
	}, nil
}

func (s *session) ResolveCaller() types.AccountID {
	return s.caller
}

func (s *session) Memos() interfaces.MemoStorage {
	return s.memos
}

func (s *session) Transferer() interfaces.NativeTransferer {
	return s.bank
}

func (s *session) Log(message string) {
	s.logs = append(s.logs, message)
}

// discard drops every write and side effect recorded by the session
func (s *session) discard() {
	s.overlay.Discard()
	s.memos.writes = nil
	s.bank.settled = nil
	s.logs = nil
}
