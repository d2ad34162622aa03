package vm

import (
	"fmt"

	"github.com/holiman/uint256"
	"github.com/mezonai/decash/ledger"
	"github.com/mezonai/decash/store"
	"github.com/mezonai/decash/types"
)

// Bank settles native transfers out of the contract account. It reads and writes balances
// through the account store of the current session, so a discarded session leaves balances
// untouched.
type Bank struct {
	accounts   store.AccountStore
	contractID types.AccountID
	settled    []types.TransferRequest
}

func newBank(accounts store.AccountStore, contractID types.AccountID) *Bank {
	return &Bank{accounts: accounts, contractID: contractID}
}

// NativeTransfer implements interfaces.NativeTransferer
func (b *Bank) NativeTransfer(target types.AccountID, amount *uint256.Int) error {
	if err := types.ValidateAccountID(target); err != nil {
		return fmt.Errorf("%w: %v", ledger.ErrInvalidRecipient, err)
	}

	recipient, err := b.accounts.GetByID(target)
	if err != nil {
		return fmt.Errorf("could not load recipient: %w", err)
	}
	if recipient == nil {
		return fmt.Errorf("%w: account %s does not exist", ledger.ErrInvalidRecipient, target)
	}

	payer, err := b.accounts.GetByID(b.contractID)
	if err != nil {
		return fmt.Errorf("could not load contract account: %w", err)
	}
	if payer == nil {
		return fmt.Errorf("contract account %s is not registered", b.contractID)
	}

	if payer.Balance.Lt(amount) {
		return fmt.Errorf("%w: balance %s, requested %s", ledger.ErrInsufficientBalance, payer.Balance.Dec(), amount.Dec())
	}

	if target != b.contractID {
		newRecipientBalance, overflow := new(uint256.Int).AddOverflow(recipient.Balance, amount)
		if overflow {
			return fmt.Errorf("balance of %s would overflow", target)
		}
		payer.Balance = new(uint256.Int).Sub(payer.Balance, amount)
		recipient.Balance = newRecipientBalance

		if err := b.accounts.Store(payer); err != nil {
			return err
		}
		if err := b.accounts.Store(recipient); err != nil {
			return err
		}
	}

	b.settled = append(b.settled, types.TransferRequest{Target: target, Amount: amount.Clone()})
	return nil
}
