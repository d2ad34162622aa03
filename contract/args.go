package contract

import (
	"fmt"

	"github.com/mezonai/decash/jsonx"
)

type appendMemoArgs struct {
	MemoText *string `json:"memo_text" jsonschema_description:"Free text of the memo, may be empty."`
	Price    *string `json:"price" jsonschema_description:"Price as written by the caller, stored with a NEAR suffix."`
}

func (a *appendMemoArgs) validate() error {
	if a.MemoText == nil {
		return fmt.Errorf("missing field memo_text")
	}
	if a.Price == nil {
		return fmt.Errorf("missing field price")
	}
	return nil
}

type transferArgs struct {
	AccountID *string `json:"account_id" jsonschema_description:"Registered account receiving the transfer."`
	Amount    *string `json:"amount" jsonschema_description:"Amount in yocto as a decimal integer string, '_' separators allowed."`
}

func (a *transferArgs) validate() error {
	if a.AccountID == nil {
		return fmt.Errorf("missing field account_id")
	}
	if a.Amount == nil {
		return fmt.Errorf("missing field amount")
	}
	return nil
}

type getMemosArgs struct {
	User *string `json:"user" jsonschema_description:"Account whose memo history is returned."`
}

func (a *getMemosArgs) validate() error {
	if a.User == nil {
		return fmt.Errorf("missing field user")
	}
	return nil
}

type validatable interface {
	validate() error
}

func decodeArgs(raw []byte, out validatable) error {
	if len(raw) == 0 {
		raw = []byte("{}")
	}
	if err := jsonx.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("could not decode arguments: %w", err)
	}
	return out.validate()
}
