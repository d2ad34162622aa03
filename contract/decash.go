package contract

import (
	stderrors "errors"
	"fmt"
	"sort"

	"github.com/mezonai/decash/errors"
	"github.com/mezonai/decash/jsonx"
	"github.com/mezonai/decash/ledger"
	"github.com/mezonai/decash/types"
)

const (
	MethodAppendMemo = "append_memo"
	MethodTransfer   = "transfer"
	MethodGetMemos   = "get_memos"

	// names used by the first deployment of the contract
	MethodAddMemoAlias  = "add_memo"
	MethodTransferAlias = "transfer_money"
)

type handler func(env Env, args []byte) ([]byte, error)

// Method describes one entry point of the contract
type Method struct {
	Name string
	// View methods only read state and can run without a caller
	View bool
	// AliasOf names the method this entry point forwards to, empty for primary names
	AliasOf string
	handler handler
	args    validatable
}

// DeCash is the memo ledger contract: it keeps an append-only memo history per account and
// can pay out of its own balance
type DeCash struct {
	methods map[string]*Method
}

func New() *DeCash {
	c := &DeCash{methods: make(map[string]*Method)}
	c.register(&Method{Name: MethodAppendMemo, handler: c.appendMemo, args: &appendMemoArgs{}})
	c.register(&Method{Name: MethodTransfer, handler: c.transfer, args: &transferArgs{}})
	c.register(&Method{Name: MethodGetMemos, View: true, handler: c.getMemos, args: &getMemosArgs{}})
	c.alias(MethodAddMemoAlias, MethodAppendMemo)
	c.alias(MethodTransferAlias, MethodTransfer)
	return c
}

func (c *DeCash) register(m *Method) {
	c.methods[m.Name] = m
}

func (c *DeCash) alias(name, target string) {
	m := *c.methods[target]
	m.Name = name
	m.AliasOf = target
	c.methods[name] = &m
}

// Method looks up an entry point by name
func (c *DeCash) Method(name string) (*Method, bool) {
	m, ok := c.methods[name]
	return m, ok
}

// Methods lists every entry point name in lexical order
func (c *DeCash) Methods() []string {
	names := make([]string, 0, len(c.methods))
	for name := range c.methods {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Invoke dispatches a call to exactly one method. Any returned error is a *errors.CallError and
// means the call must be aborted.
func (c *DeCash) Invoke(env Env, method string, args []byte) ([]byte, error) {
	m, ok := c.methods[method]
	if !ok {
		return nil, errors.Newf(nil, errors.ErrCodeMethodNotFound, errors.ErrMsgMethodNotFound, method)
	}
	result, err := m.handler(env, args)
	if err != nil {
		return nil, toCallError(err)
	}
	return result, nil
}

func (c *DeCash) appendMemo(env Env, raw []byte) ([]byte, error) {
	var args appendMemoArgs
	if err := decodeArgs(raw, &args); err != nil {
		return nil, errors.Newf(err, errors.ErrCodeInvalidArgs, "%s: %v", errors.ErrMsgInvalidArgs, err)
	}

	caller := env.ResolveCaller()
	if err := ledger.NewMemoLedger(env.Memos()).AppendMemo(caller, *args.MemoText, *args.Price); err != nil {
		return nil, err
	}
	env.Log(fmt.Sprintf("memo added for %s", caller))
	return nil, nil
}

func (c *DeCash) transfer(env Env, raw []byte) ([]byte, error) {
	var args transferArgs
	if err := decodeArgs(raw, &args); err != nil {
		return nil, errors.Newf(err, errors.ErrCodeInvalidArgs, "%s: %v", errors.ErrMsgInvalidArgs, err)
	}
	amount, err := types.ParseAmount(*args.Amount)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ledger.ErrInvalidAmount, err)
	}

	target := types.AccountID(*args.AccountID)
	if err := ledger.NewPaymentExecutor(env.Transferer()).Transfer(target, amount); err != nil {
		return nil, err
	}
	env.Log(fmt.Sprintf("transferred %s to %s", amount.Dec(), target))
	return nil, nil
}

func (c *DeCash) getMemos(env Env, raw []byte) ([]byte, error) {
	var args getMemosArgs
	if err := decodeArgs(raw, &args); err != nil {
		return nil, errors.Newf(err, errors.ErrCodeInvalidArgs, "%s: %v", errors.ErrMsgInvalidArgs, err)
	}

	memos, err := ledger.NewMemoLedger(env.Memos()).GetMemos(types.AccountID(*args.User))
	if err != nil {
		return nil, err
	}
	return jsonx.Marshal(memos)
}

func toCallError(err error) *errors.CallError {
	var ce *errors.CallError
	switch {
	case stderrors.As(err, &ce):
		return ce
	case stderrors.Is(err, ledger.ErrInsufficientBalance):
		return errors.Newf(err, errors.ErrCodeInsufficientBalance, errors.ErrMsgInsufficientBalance)
	case stderrors.Is(err, ledger.ErrInvalidRecipient):
		return errors.Newf(err, errors.ErrCodeInvalidRecipient, "%s: %v", errors.ErrMsgInvalidRecipient, err)
	case stderrors.Is(err, ledger.ErrInvalidAmount):
		return errors.Newf(err, errors.ErrCodeInvalidAmount, "%s: %v", errors.ErrMsgInvalidAmount, err)
	default:
		return errors.AsCallError(err)
	}
}
