package ledger

import (
	"fmt"

	"github.com/holiman/uint256"
	"github.com/mezonai/decash/interfaces"
	"github.com/mezonai/decash/logx"
	"github.com/mezonai/decash/types"
)

// PaymentExecutor requests native transfers out of the contract's balance. There is no
// restriction on who may trigger a transfer or where it goes.
type PaymentExecutor struct {
	transferer interfaces.NativeTransferer
}

func NewPaymentExecutor(transferer interfaces.NativeTransferer) *PaymentExecutor {
	return &PaymentExecutor{transferer: transferer}
}

// Transfer sends amount yocto units to target. Errors wrap ErrInsufficientBalance,
// ErrInvalidRecipient or ErrInvalidAmount; any error must abort the enclosing call.
func (p *PaymentExecutor) Transfer(target types.AccountID, amount *uint256.Int) error {
	if amount == nil || amount.IsZero() {
		return fmt.Errorf("%w: zero amount transfers are not allowed", ErrInvalidAmount)
	}
	req := types.TransferRequest{Target: target, Amount: amount}

	if err := p.transferer.NativeTransfer(req.Target, req.Amount); err != nil {
		return fmt.Errorf("transfer of %s to %s failed: %w", req.Amount.Dec(), req.Target, err)
	}

	logx.Warn("PAYMENT", fmt.Sprintf("Unrestricted transfer of %s to %s executed", req.Amount.Dec(), req.Target))
	return nil
}
