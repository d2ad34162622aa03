package store

import (
	"strings"

	"github.com/holiman/uint256"
	"github.com/mezonai/decash/db"
	"github.com/mezonai/decash/jsonx"
	"github.com/mezonai/decash/types"
	"github.com/pkg/errors"
)

type AccountStore interface {
	Store(account *types.Account) error
	GetByID(id types.AccountID) (*types.Account, error)
	ExistsByID(id types.AccountID) (bool, error)
	List() ([]*types.Account, error)
}

// accountData is the persisted account record, balance is a decimal string of yocto units
type accountData struct {
	ID      string `json:"account_id"`
	Balance string `json:"balance"`
}

type GenericAccountStore struct {
	dbProvider db.DatabaseProvider
}

func NewGenericAccountStore(dbProvider db.DatabaseProvider) (*GenericAccountStore, error) {
	if dbProvider == nil {
		return nil, errors.New("provider cannot be nil")
	}

	return &GenericAccountStore{
		dbProvider: dbProvider,
	}, nil
}

func (as *GenericAccountStore) Store(account *types.Account) error {
	balance := account.Balance
	if balance == nil {
		balance = uint256.NewInt(0)
	}
	data, err := jsonx.Marshal(accountData{ID: string(account.ID), Balance: balance.Dec()})
	if err != nil {
		return errors.Wrap(err, "failed to marshal account")
	}

	if err := as.dbProvider.Put(as.getDbKey(account.ID), data); err != nil {
		return errors.Wrap(err, "failed to write account to db")
	}
	return nil
}

// GetByID returns account instance from db, return both nil if not exist
func (as *GenericAccountStore) GetByID(id types.AccountID) (*types.Account, error) {
	data, err := as.dbProvider.Get(as.getDbKey(id))
	if err != nil {
		return nil, errors.Wrapf(err, "could not get account %s from db", id)
	}
	if data == nil {
		return nil, nil
	}
	return decodeAccount(data)
}

func (as *GenericAccountStore) ExistsByID(id types.AccountID) (bool, error) {
	return as.dbProvider.Has(as.getDbKey(id))
}

// List returns every registered account, the provider must support iteration
func (as *GenericAccountStore) List() ([]*types.Account, error) {
	iterable, ok := as.dbProvider.(db.IterableProvider)
	if !ok {
		return nil, errors.New("provider does not support iteration")
	}

	accounts := make([]*types.Account, 0)
	var decodeErr error
	err := iterable.IteratePrefix([]byte(PrefixAccount), func(key, value []byte) bool {
		acc, err := decodeAccount(value)
		if err != nil {
			decodeErr = errors.Wrapf(err, "account key %s", strings.TrimPrefix(string(key), PrefixAccount))
			return false
		}
		accounts = append(accounts, acc)
		return true
	})
	if err != nil {
		return nil, errors.Wrap(err, "could not iterate accounts")
	}
	return accounts, decodeErr
}

func (as *GenericAccountStore) getDbKey(id types.AccountID) []byte {
	return []byte(PrefixAccount + string(id))
}

func decodeAccount(data []byte) (*types.Account, error) {
	var rec accountData
	if err := jsonx.Unmarshal(data, &rec); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal account")
	}
	balance, err := uint256.FromDecimal(rec.Balance)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid balance of account %s", rec.ID)
	}
	return &types.Account{ID: types.AccountID(rec.ID), Balance: balance}, nil
}
