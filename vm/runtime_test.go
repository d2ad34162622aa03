package vm

import (
	"context"
	"testing"
	"time"

	"github.com/holiman/uint256"
	"github.com/mezonai/decash/contract"
	"github.com/mezonai/decash/db"
	"github.com/mezonai/decash/errors"
	"github.com/mezonai/decash/events"
	"github.com/mezonai/decash/jsonx"
	"github.com/mezonai/decash/store"
	"github.com/mezonai/decash/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testContractID = types.AccountID("decash.near")

// ----------------- Helpers -----------------

// panicProvider panics when the given key is read
type panicProvider struct {
	db.IterableProvider
	panicKey string
}

func (p *panicProvider) Get(key []byte) ([]byte, error) {
	if string(key) == p.panicKey {
		panic("storage exploded")
	}
	return p.IterableProvider.Get(key)
}

func newTestProvider(t *testing.T) db.IterableProvider {
	t.Helper()
	provider, err := db.NewMemLevelDBProvider()
	require.NoError(t, err)
	t.Cleanup(func() { _ = provider.Close() })
	return provider
}

func newTestRuntime(t *testing.T, provider db.DatabaseProvider, opts ...Option) *Runtime {
	t.Helper()
	rt, err := NewRuntime(provider, contract.New(), testContractID, opts...)
	require.NoError(t, err)

	require.NoError(t, rt.ApplyGenesis([]*types.Account{
		{ID: testContractID, Balance: uint256.NewInt(1000)},
		{ID: "alice", Balance: uint256.NewInt(0)},
		{ID: "bob", Balance: uint256.NewInt(5)},
	}))
	return rt
}

func snapshot(t *testing.T, provider db.IterableProvider) map[string]string {
	t.Helper()
	state := make(map[string]string)
	require.NoError(t, provider.IteratePrefix([]byte{}, func(key, value []byte) bool {
		state[string(key)] = string(value)
		return true
	}))
	return state
}

func appendArgs(memo, price string) []byte {
	args, _ := jsonx.Marshal(map[string]string{"memo_text": memo, "price": price})
	return args
}

func transferArgs(to, amount string) []byte {
	args, _ := jsonx.Marshal(map[string]string{"account_id": to, "amount": amount})
	return args
}

func viewMemos(t *testing.T, rt *Runtime, user string) []string {
	t.Helper()
	args, err := jsonx.Marshal(map[string]string{"user": user})
	require.NoError(t, err)
	out, err := rt.View(context.Background(), contract.MethodGetMemos, args)
	require.NoError(t, err)

	var memos []string
	require.NoError(t, jsonx.Unmarshal(out, &memos))
	return memos
}

// ----------------- Tests -----------------

func TestRuntime_AliceScenario(t *testing.T) {
	rt := newTestRuntime(t, newTestProvider(t))
	ctx := context.Background()

	receipt, err := rt.Call(ctx, "alice", contract.MethodAppendMemo, appendArgs("coffee", "2.5"))
	require.NoError(t, err)
	assert.Equal(t, ReceiptSuccess, receipt.Status)
	assert.Equal(t, uint64(1), receipt.Seq)
	assert.NotEmpty(t, receipt.Hash)
	assert.NotEmpty(t, receipt.DeltaHash)

	receipt, err = rt.Call(ctx, "alice", contract.MethodAppendMemo, appendArgs("book", "10"))
	require.NoError(t, err)
	assert.Equal(t, uint64(2), receipt.Seq)

	assert.Equal(t, []string{"coffee || 2.5NEAR", "book || 10NEAR"}, viewMemos(t, rt, "alice"))
	assert.Equal(t, []string{}, viewMemos(t, rt, "bob"))
}

func TestRuntime_AppendIsolationAndIdempotentReads(t *testing.T) {
	rt := newTestRuntime(t, newTestProvider(t))
	ctx := context.Background()

	_, err := rt.Call(ctx, "bob", contract.MethodAppendMemo, appendArgs("rent", "100"))
	require.NoError(t, err)
	bobBefore := viewMemos(t, rt, "bob")

	_, err = rt.Call(ctx, "alice", contract.MethodAppendMemo, appendArgs("lunch", "3"))
	require.NoError(t, err)
	assert.Equal(t, bobBefore, viewMemos(t, rt, "bob"))

	seq, err := rt.Sequence()
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		assert.Equal(t, []string{"lunch || 3NEAR"}, viewMemos(t, rt, "alice"))
	}
	after, err := rt.Sequence()
	require.NoError(t, err)
	assert.Equal(t, seq, after, "views must not be sequenced")
}

func TestRuntime_TransferMovesBalance(t *testing.T) {
	rt := newTestRuntime(t, newTestProvider(t))

	receipt, err := rt.Call(context.Background(), "alice", contract.MethodTransfer, transferArgs("bob", "400"))
	require.NoError(t, err)
	assert.Equal(t, ReceiptSuccess, receipt.Status)
	assert.Equal(t, []string{"transferred 400 to bob"}, receipt.Logs)

	balance, err := rt.Balance(testContractID)
	require.NoError(t, err)
	assert.Equal(t, uint64(600), balance.Uint64())

	balance, err = rt.Balance("bob")
	require.NoError(t, err)
	assert.Equal(t, uint64(405), balance.Uint64())
}

func TestRuntime_InsufficientBalanceLeavesStateUntouched(t *testing.T) {
	provider := newTestProvider(t)
	rt := newTestRuntime(t, provider)
	ctx := context.Background()

	_, err := rt.Call(ctx, "alice", contract.MethodAppendMemo, appendArgs("coffee", "2.5"))
	require.NoError(t, err)
	before := snapshot(t, provider)

	receipt, err := rt.Call(ctx, "alice", contract.MethodTransfer, transferArgs("bob", "1001"))
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeInsufficientBalance, errors.CodeOf(err))
	require.NotNil(t, receipt)
	assert.Equal(t, ReceiptFailure, receipt.Status)
	assert.Zero(t, receipt.Seq)
	assert.Equal(t, errors.ErrCodeInsufficientBalance, receipt.Error.Code)

	assert.Equal(t, before, snapshot(t, provider))
}

func TestRuntime_InvalidRecipient(t *testing.T) {
	provider := newTestProvider(t)
	rt := newTestRuntime(t, provider)
	before := snapshot(t, provider)

	for _, target := range []string{"carol", "Not Valid", ""} {
		_, err := rt.Call(context.Background(), "alice", contract.MethodTransfer, transferArgs(target, "1"))
		assert.Equal(t, errors.ErrCodeInvalidRecipient, errors.CodeOf(err), target)
	}
	assert.Equal(t, before, snapshot(t, provider))
}

func TestRuntime_MultiActionRollsBackEarlierActions(t *testing.T) {
	provider := newTestProvider(t)
	rt := newTestRuntime(t, provider)
	before := snapshot(t, provider)

	tx := &Transaction{
		Signer: "alice",
		Actions: []Action{
			{Method: contract.MethodAppendMemo, Args: appendArgs("gift", "2000")},
			{Method: contract.MethodTransfer, Args: transferArgs("bob", "2000")},
		},
	}
	_, err := rt.Execute(context.Background(), tx)
	assert.Equal(t, errors.ErrCodeInsufficientBalance, errors.CodeOf(err))

	assert.Equal(t, before, snapshot(t, provider))
	assert.Equal(t, []string{}, viewMemos(t, rt, "alice"))

	tx.Actions[0].Args = appendArgs("gift", "20")
	tx.Actions[1].Args = transferArgs("bob", "20")
	receipt, err := rt.Execute(context.Background(), tx)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), receipt.Seq)
	assert.Equal(t, []string{"gift || 20NEAR"}, viewMemos(t, rt, "alice"))

	balance, err := rt.Balance("bob")
	require.NoError(t, err)
	assert.Equal(t, uint64(25), balance.Uint64())
}

func TestRuntime_PanicIsRolledBack(t *testing.T) {
	base := newTestProvider(t)
	provider := &panicProvider{IterableProvider: base, panicKey: "memo:mallory"}
	rt := newTestRuntime(t, provider)
	before := snapshot(t, base)

	tx := &Transaction{
		Signer: "mallory",
		Actions: []Action{
			{Method: contract.MethodTransfer, Args: transferArgs("bob", "1")},
			{Method: contract.MethodAppendMemo, Args: appendArgs("boom", "1")},
		},
	}
	receipt, err := rt.Execute(context.Background(), tx)
	assert.Equal(t, errors.ErrCodeInternal, errors.CodeOf(err))
	assert.Equal(t, ReceiptFailure, receipt.Status)
	assert.Equal(t, before, snapshot(t, base))
}

func TestRuntime_ViewRejectsMutatingMethods(t *testing.T) {
	rt := newTestRuntime(t, newTestProvider(t))

	_, err := rt.View(context.Background(), contract.MethodAppendMemo, appendArgs("x", "1"))
	assert.Equal(t, errors.ErrCodeNotViewMethod, errors.CodeOf(err))

	_, err = rt.View(context.Background(), "nope", nil)
	assert.Equal(t, errors.ErrCodeMethodNotFound, errors.CodeOf(err))
}

func TestRuntime_CancelledContext(t *testing.T) {
	rt := newTestRuntime(t, newTestProvider(t))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := rt.Call(ctx, "alice", contract.MethodAppendMemo, appendArgs("x", "1"))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, []string{}, viewMemos(t, rt, "alice"))
}

func TestRuntime_InvalidTransaction(t *testing.T) {
	rt := newTestRuntime(t, newTestProvider(t))

	_, err := rt.Execute(context.Background(), &Transaction{Signer: "alice"})
	assert.Equal(t, errors.ErrCodeInvalidArgs, errors.CodeOf(err))

	_, err = rt.Call(context.Background(), "", contract.MethodAppendMemo, appendArgs("x", "1"))
	assert.Equal(t, errors.ErrCodeInvalidArgs, errors.CodeOf(err))
}

func TestRuntime_ApplyGenesisIsIdempotent(t *testing.T) {
	provider := newTestProvider(t)
	rt := newTestRuntime(t, provider)

	_, err := rt.Call(context.Background(), "alice", contract.MethodTransfer, transferArgs("bob", "10"))
	require.NoError(t, err)

	require.NoError(t, rt.ApplyGenesis([]*types.Account{{ID: testContractID, Balance: uint256.NewInt(1000)}}))
	balance, err := rt.Balance(testContractID)
	require.NoError(t, err)
	assert.Equal(t, uint64(990), balance.Uint64())

	accounts, err := rt.Accounts()
	require.NoError(t, err)
	assert.Len(t, accounts, 3)
}

func TestRuntime_ApplyGenesisRequiresContractAccount(t *testing.T) {
	rt, err := NewRuntime(newTestProvider(t), contract.New(), testContractID)
	require.NoError(t, err)

	err = rt.ApplyGenesis([]*types.Account{{ID: "alice", Balance: uint256.NewInt(1)}})
	assert.Error(t, err)

	accounts, err := rt.Accounts()
	require.NoError(t, err)
	assert.Empty(t, accounts)
}

func TestRuntime_ApplyGenesisRejectsOtherContract(t *testing.T) {
	provider := newTestProvider(t)
	newTestRuntime(t, provider)

	other, err := NewRuntime(provider, contract.New(), "other.near")
	require.NoError(t, err)
	err = other.ApplyGenesis([]*types.Account{{ID: "other.near", Balance: uint256.NewInt(1)}})
	assert.Error(t, err)

	accounts, err := store.NewGenericAccountStore(provider)
	require.NoError(t, err)
	found, err := accounts.ExistsByID("other.near")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestRuntime_PublishesEventsAfterOutcome(t *testing.T) {
	bus := events.NewEventBus()
	_, ch := bus.Subscribe()
	rt := newTestRuntime(t, newTestProvider(t), WithEventBus(bus))
	ctx := context.Background()

	receipt, err := rt.Call(ctx, "alice", contract.MethodAppendMemo, appendArgs("coffee", "2.5"))
	require.NoError(t, err)
	_, err = rt.Call(ctx, "alice", contract.MethodTransfer, transferArgs("bob", "1"))
	require.NoError(t, err)
	_, err = rt.Call(ctx, "alice", contract.MethodTransfer, transferArgs("bob", "100000"))
	require.Error(t, err)

	got := make([]events.ContractEvent, 0, 3)
	for len(got) < 3 {
		select {
		case e := <-ch:
			got = append(got, e)
		case <-time.After(time.Second):
			t.Fatalf("only received %d events", len(got))
		}
	}

	memo, ok := got[0].(*events.MemoAppended)
	require.True(t, ok)
	assert.Equal(t, receipt.Hash, memo.ReceiptHash())
	assert.Equal(t, types.AccountID("alice"), memo.Account)
	assert.Equal(t, "coffee || 2.5NEAR", memo.Record)

	transfer, ok := got[1].(*events.NativeTransferred)
	require.True(t, ok)
	assert.Equal(t, testContractID, transfer.From)
	assert.Equal(t, types.AccountID("bob"), transfer.To)

	failed, ok := got[2].(*events.CallFailed)
	require.True(t, ok)
	assert.Equal(t, contract.MethodTransfer, failed.Method)
}

func TestRuntime_StatePersistsAcrossRuntimes(t *testing.T) {
	provider := newTestProvider(t)
	rt := newTestRuntime(t, provider)
	_, err := rt.Call(context.Background(), "alice", contract.MethodAppendMemo, appendArgs("a", "1"))
	require.NoError(t, err)

	reopened, err := NewRuntime(provider, contract.New(), testContractID)
	require.NoError(t, err)
	assert.Equal(t, []string{"a || 1NEAR"}, viewMemos(t, reopened, "alice"))

	receipt, err := reopened.Call(context.Background(), "alice", contract.MethodAppendMemo, appendArgs("b", "2"))
	require.NoError(t, err)
	assert.Equal(t, uint64(2), receipt.Seq)
}

func TestTransactionHash(t *testing.T) {
	tx := NewCallTransaction("alice", contract.MethodAppendMemo, appendArgs("a", "1"))
	assert.Equal(t, tx.Hash(1), tx.Hash(1))
	assert.NotEqual(t, tx.Hash(1), tx.Hash(2))

	other := NewCallTransaction("bob", contract.MethodAppendMemo, appendArgs("a", "1"))
	assert.NotEqual(t, tx.Hash(1), other.Hash(1))
}
