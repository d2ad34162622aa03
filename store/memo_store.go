package store

import (
	"github.com/mezonai/decash/db"
	"github.com/mezonai/decash/types"
	"github.com/pkg/errors"
)

// MemoStore persists each account's memo history as a single Borsh value under memo:<account>
type MemoStore struct {
	dbProvider db.DatabaseProvider
}

func NewMemoStore(dbProvider db.DatabaseProvider) (*MemoStore, error) {
	if dbProvider == nil {
		return nil, errors.New("provider cannot be nil")
	}
	return &MemoStore{dbProvider: dbProvider}, nil
}

// Get returns the stored history of account, found is false when the key does not exist
func (ms *MemoStore) Get(account types.AccountID) ([]string, bool, error) {
	data, err := ms.dbProvider.Get(ms.getDbKey(account))
	if err != nil {
		return nil, false, errors.Wrapf(err, "could not get memos of %s from db", account)
	}
	if data == nil {
		return nil, false, nil
	}

	records, err := DecodeMemos(data)
	if err != nil {
		return nil, false, errors.Wrapf(err, "corrupted memos of %s", account)
	}
	return records, true, nil
}

// Set overwrites the whole history of account
func (ms *MemoStore) Set(account types.AccountID, records []string) error {
	data, err := EncodeMemos(records)
	if err != nil {
		return err
	}
	if err := ms.dbProvider.Put(ms.getDbKey(account), data); err != nil {
		return errors.Wrapf(err, "failed to write memos of %s to db", account)
	}
	return nil
}

func (ms *MemoStore) getDbKey(account types.AccountID) []byte {
	return []byte(PrefixMemo + string(account))
}
