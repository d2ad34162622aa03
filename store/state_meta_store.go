package store

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"

	"github.com/mezonai/decash/db"
	"github.com/mezonai/decash/types"
)

// StateMetaStore keeps the call sequence counter and the delta hash of every committed call.
// Keys:
// - StateMetaKeySequence => 8-byte big-endian last committed sequence
// - StateMetaKeyContract => account id the contract is deployed at
// - PrefixDeltaHashBySeq + <8-byte big-endian seq> => 32-byte delta hash
type StateMetaStore interface {
	GetSequence() (uint64, error)
	SetSequence(seq uint64) error
	SetDeltaHash(seq uint64, hash [32]byte) error
	GetDeltaHash(seq uint64) ([32]byte, bool, error)
	GetContractAccount() (types.AccountID, error)
	SetContractAccount(id types.AccountID) error
}

type GenericStateMetaStore struct {
	provider db.DatabaseProvider
}

func NewGenericStateMetaStore(provider db.DatabaseProvider) *GenericStateMetaStore {
	return &GenericStateMetaStore{provider: provider}
}

func (s *GenericStateMetaStore) GetSequence() (uint64, error) {
	value, err := s.provider.Get([]byte(StateMetaKeySequence))
	if err != nil {
		return 0, fmt.Errorf("failed to get sequence: %w", err)
	}
	if len(value) == 0 {
		return 0, nil
	}
	if len(value) != 8 {
		return 0, fmt.Errorf("invalid sequence length: %d", len(value))
	}
	return binary.BigEndian.Uint64(value), nil
}

func (s *GenericStateMetaStore) SetSequence(seq uint64) error {
	value := make([]byte, 8)
	binary.BigEndian.PutUint64(value, seq)
	if err := s.provider.Put([]byte(StateMetaKeySequence), value); err != nil {
		return fmt.Errorf("failed to store sequence %d: %w", seq, err)
	}
	return nil
}

func (s *GenericStateMetaStore) seqToDeltaHashKey(seq uint64) []byte {
	key := make([]byte, len(PrefixDeltaHashBySeq)+8)
	copy(key, PrefixDeltaHashBySeq)
	binary.BigEndian.PutUint64(key[len(PrefixDeltaHashBySeq):], seq)
	return key
}

func (s *GenericStateMetaStore) SetDeltaHash(seq uint64, hash [32]byte) error {
	if err := s.provider.Put(s.seqToDeltaHashKey(seq), hash[:]); err != nil {
		return fmt.Errorf("failed to store delta hash for seq %d: %w", seq, err)
	}
	return nil
}

func (s *GenericStateMetaStore) GetDeltaHash(seq uint64) ([32]byte, bool, error) {
	value, err := s.provider.Get(s.seqToDeltaHashKey(seq))
	if err != nil {
		return [32]byte{}, false, fmt.Errorf("failed to get delta hash for seq %d: %w", seq, err)
	}
	if len(value) == 0 {
		return [32]byte{}, false, nil
	}
	if len(value) != sha256.Size {
		return [32]byte{}, false, fmt.Errorf("invalid delta hash length: %d", len(value))
	}
	var out [32]byte
	copy(out[:], value)
	return out, true, nil
}

// GetContractAccount returns the deployed contract account, empty if genesis was never applied
func (s *GenericStateMetaStore) GetContractAccount() (types.AccountID, error) {
	value, err := s.provider.Get([]byte(StateMetaKeyContract))
	if err != nil {
		return "", fmt.Errorf("failed to get contract account: %w", err)
	}
	return types.AccountID(value), nil
}

func (s *GenericStateMetaStore) SetContractAccount(id types.AccountID) error {
	if err := s.provider.Put([]byte(StateMetaKeyContract), []byte(id)); err != nil {
		return fmt.Errorf("failed to store contract account: %w", err)
	}
	return nil
}
