package contract

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/mezonai/decash/errors"
	"github.com/mezonai/decash/interfaces"
	"github.com/mezonai/decash/jsonx"
	"github.com/mezonai/decash/ledger"
	"github.com/mezonai/decash/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ----------------- Helpers / Mocks -----------------

type memStorage map[types.AccountID][]string

func (m memStorage) Get(account types.AccountID) ([]string, bool, error) {
	records, ok := m[account]
	return append([]string(nil), records...), ok, nil
}

func (m memStorage) Set(account types.AccountID, records []string) error {
	m[account] = append([]string(nil), records...)
	return nil
}

type memBank struct {
	contract map[types.AccountID]bool
	balance  *uint256.Int
	received map[types.AccountID]*uint256.Int
}

func (b *memBank) NativeTransfer(target types.AccountID, amount *uint256.Int) error {
	if !b.contract[target] {
		return ledger.ErrInvalidRecipient
	}
	if b.balance.Lt(amount) {
		return ledger.ErrInsufficientBalance
	}
	b.balance = new(uint256.Int).Sub(b.balance, amount)
	if b.received[target] == nil {
		b.received[target] = uint256.NewInt(0)
	}
	b.received[target].Add(b.received[target], amount)
	return nil
}

type testEnv struct {
	caller  types.AccountID
	storage memStorage
	bank    *memBank
	logs    []string
}

func newTestEnv(caller types.AccountID) *testEnv {
	return &testEnv{
		caller:  caller,
		storage: memStorage{},
		bank: &memBank{
			contract: map[types.AccountID]bool{"bob": true},
			balance:  uint256.NewInt(100),
			received: map[types.AccountID]*uint256.Int{},
		},
	}
}

func (e *testEnv) ResolveCaller() types.AccountID          { return e.caller }
func (e *testEnv) Memos() interfaces.MemoStorage           { return e.storage }
func (e *testEnv) Transferer() interfaces.NativeTransferer { return e.bank }
func (e *testEnv) Log(message string)                      { e.logs = append(e.logs, message) }

func getMemos(t *testing.T, c *DeCash, env Env, user string) []string {
	t.Helper()
	args, err := jsonx.Marshal(map[string]string{"user": user})
	require.NoError(t, err)
	out, err := c.Invoke(env, MethodGetMemos, args)
	require.NoError(t, err)

	var memos []string
	require.NoError(t, jsonx.Unmarshal(out, &memos))
	return memos
}

// ----------------- Tests -----------------

func TestDeCash_AliceScenario(t *testing.T) {
	c := New()
	env := newTestEnv("alice")

	_, err := c.Invoke(env, MethodAppendMemo, []byte(`{"memo_text":"coffee","price":"2.5"}`))
	require.NoError(t, err)
	_, err = c.Invoke(env, MethodAppendMemo, []byte(`{"memo_text":"book","price":"10"}`))
	require.NoError(t, err)

	assert.Equal(t, []string{"coffee || 2.5NEAR", "book || 10NEAR"}, getMemos(t, c, env, "alice"))
	assert.Equal(t, []string{}, getMemos(t, c, env, "bob"))
	assert.Equal(t, []string{"memo added for alice", "memo added for alice"}, env.logs)
}

func TestDeCash_GetMemosEncodesEmptyArray(t *testing.T) {
	out, err := New().Invoke(newTestEnv("alice"), MethodGetMemos, []byte(`{"user":"nobody"}`))
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(out))
}

func TestDeCash_AddMemoAlias(t *testing.T) {
	c := New()
	env := newTestEnv("alice")

	_, err := c.Invoke(env, MethodAddMemoAlias, []byte(`{"memo_text":"tea","price":"1"}`))
	require.NoError(t, err)
	assert.Equal(t, []string{"tea || 1NEAR"}, getMemos(t, c, env, "alice"))
}

func TestDeCash_Transfer(t *testing.T) {
	c := New()
	env := newTestEnv("alice")

	_, err := c.Invoke(env, MethodTransfer, []byte(`{"account_id":"bob","amount":"40"}`))
	require.NoError(t, err)
	assert.Equal(t, uint64(60), env.bank.balance.Uint64())
	assert.Equal(t, uint64(40), env.bank.received["bob"].Uint64())

	_, err = c.Invoke(env, MethodTransferAlias, []byte(`{"account_id":"bob","amount":"60"}`))
	require.NoError(t, err)
	assert.True(t, env.bank.balance.IsZero())
}

func TestDeCash_TransferFailures(t *testing.T) {
	c := New()

	cases := []struct {
		name string
		args string
		code errors.CallErrorCode
	}{
		{"exceeds balance", `{"account_id":"bob","amount":"101"}`, errors.ErrCodeInsufficientBalance},
		{"unknown recipient", `{"account_id":"carol","amount":"1"}`, errors.ErrCodeInvalidRecipient},
		{"zero amount", `{"account_id":"bob","amount":"0"}`, errors.ErrCodeInvalidAmount},
		{"fractional amount", `{"account_id":"bob","amount":"2.5"}`, errors.ErrCodeInvalidAmount},
		{"numeric amount", `{"account_id":"bob","amount":2.5}`, errors.ErrCodeInvalidArgs},
		{"missing amount", `{"account_id":"bob"}`, errors.ErrCodeInvalidArgs},
		{"malformed json", `{"account_id":`, errors.ErrCodeInvalidArgs},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			env := newTestEnv("alice")
			_, err := c.Invoke(env, MethodTransfer, []byte(tc.args))
			require.Error(t, err)
			assert.Equal(t, tc.code, errors.CodeOf(err))
			assert.Equal(t, uint64(100), env.bank.balance.Uint64())
			assert.Empty(t, env.logs)
		})
	}
}

func TestDeCash_AppendMemoArgs(t *testing.T) {
	c := New()
	env := newTestEnv("alice")

	_, err := c.Invoke(env, MethodAppendMemo, []byte(`{"memo_text":"x"}`))
	assert.Equal(t, errors.ErrCodeInvalidArgs, errors.CodeOf(err))

	_, err = c.Invoke(env, MethodAppendMemo, nil)
	assert.Equal(t, errors.ErrCodeInvalidArgs, errors.CodeOf(err))

	_, err = c.Invoke(env, MethodAppendMemo, []byte(`{"memo_text":"","price":""}`))
	require.NoError(t, err)
	assert.Equal(t, []string{" || NEAR"}, getMemos(t, c, env, "alice"))
}

func TestDeCash_UnknownMethod(t *testing.T) {
	_, err := New().Invoke(newTestEnv("alice"), "delete_memo", nil)
	assert.Equal(t, errors.ErrCodeMethodNotFound, errors.CodeOf(err))
}

func TestDeCash_Methods(t *testing.T) {
	c := New()
	assert.Equal(t, []string{"add_memo", "append_memo", "get_memos", "transfer", "transfer_money"}, c.Methods())

	m, ok := c.Method(MethodGetMemos)
	require.True(t, ok)
	assert.True(t, m.View)

	m, ok = c.Method(MethodTransfer)
	require.True(t, ok)
	assert.False(t, m.View)
}

func TestDeCash_ABI(t *testing.T) {
	abi := New().ABI()
	require.Len(t, abi, 5)

	addMemo := abi[0]
	assert.Equal(t, MethodAddMemoAlias, addMemo.Name)
	assert.Equal(t, MethodAppendMemo, addMemo.AliasOf)
	assert.Equal(t, []string{"memo_text", "price"}, addMemo.Args.Required)
	price, ok := addMemo.Args.Properties.Get("price")
	require.True(t, ok)
	assert.Equal(t, "string", price.Type)

	getMemos := abi[2]
	assert.Equal(t, MethodGetMemos, getMemos.Name)
	assert.True(t, getMemos.View)
	assert.Empty(t, getMemos.AliasOf)
	assert.Equal(t, []string{"user"}, getMemos.Args.Required)

	transferMoney := abi[4]
	assert.Equal(t, MethodTransfer, transferMoney.AliasOf)
	assert.Equal(t, []string{"account_id", "amount"}, transferMoney.Args.Required)
}
