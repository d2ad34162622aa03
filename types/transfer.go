package types

import (
	"fmt"
	"strings"

	"github.com/holiman/uint256"
)

// TransferRequest is built and consumed within a single call
type TransferRequest struct {
	Target AccountID
	Amount *uint256.Int
}

// ParseAmount parses an exact decimal amount of yocto units. Underscores are allowed as digit
// separators; fractions and signs are rejected.
func ParseAmount(raw string) (*uint256.Int, error) {
	cleaned := strings.ReplaceAll(strings.TrimSpace(raw), "_", "")
	if cleaned == "" {
		return nil, fmt.Errorf("amount is empty")
	}
	amount, err := uint256.FromDecimal(cleaned)
	if err != nil {
		return nil, fmt.Errorf("could not parse amount %q: %w", raw, err)
	}
	return amount, nil
}
