package types

import (
	"fmt"

	"github.com/holiman/uint256"
)

// AccountID is the opaque identity of a participant as assigned by the runtime
type AccountID string

const (
	MinAccountIDLen = 2
	MaxAccountIDLen = 64
)

// Account is a registered participant with a native balance in yocto units
type Account struct {
	ID      AccountID    `json:"account_id"`
	Balance *uint256.Int `json:"-"`
}

func (a AccountID) String() string {
	return string(a)
}

// ValidateAccountID checks the account id syntax: 2-64 chars of lowercase alphanumeric
// parts separated by a single '-', '_' or '.'
func ValidateAccountID(id AccountID) error {
	s := string(id)
	if len(s) < MinAccountIDLen || len(s) > MaxAccountIDLen {
		return fmt.Errorf("account id length %d out of range [%d, %d]", len(s), MinAccountIDLen, MaxAccountIDLen)
	}

	lastWasSeparator := true
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'a' && c <= 'z', c >= '0' && c <= '9':
			lastWasSeparator = false
		case c == '-' || c == '_' || c == '.':
			if lastWasSeparator {
				return fmt.Errorf("account id %q has a misplaced separator at %d", s, i)
			}
			lastWasSeparator = true
		default:
			return fmt.Errorf("account id %q has invalid character %q", s, c)
		}
	}
	if lastWasSeparator {
		return fmt.Errorf("account id %q ends with a separator", s)
	}
	return nil
}
