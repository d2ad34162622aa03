package store

import (
	"github.com/near/borsh-go"
	"github.com/pkg/errors"
)

// memoSequence is the persisted form of one account's history. Borsh encodes it as a u32 LE
// record count followed by each record as u32 LE length + UTF-8 bytes.
type memoSequence struct {
	Records []string
}

// EncodeMemos serializes an ordered memo sequence
func EncodeMemos(records []string) ([]byte, error) {
	data, err := borsh.Serialize(memoSequence{Records: records})
	if err != nil {
		return nil, errors.Wrap(err, "borsh encode memos")
	}
	return data, nil
}

// DecodeMemos restores a sequence written by EncodeMemos, order preserved
func DecodeMemos(data []byte) ([]string, error) {
	var seq memoSequence
	if err := borsh.Deserialize(&seq, data); err != nil {
		return nil, errors.Wrap(err, "borsh decode memos")
	}
	if seq.Records == nil {
		return []string{}, nil
	}
	return seq.Records, nil
}
