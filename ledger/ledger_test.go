package ledger

import (
	"errors"
	"testing"

	fuzz "github.com/google/gofuzz"
	"github.com/holiman/uint256"
	"github.com/mezonai/decash/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ----------------- Helpers / Mocks -----------------

type mockMemoStorage struct {
	data   map[types.AccountID][]string
	writes map[types.AccountID]int
	getErr error
}

func newMockMemoStorage() *mockMemoStorage {
	return &mockMemoStorage{
		data:   make(map[types.AccountID][]string),
		writes: make(map[types.AccountID]int),
	}
}

func (m *mockMemoStorage) Get(account types.AccountID) ([]string, bool, error) {
	if m.getErr != nil {
		return nil, false, m.getErr
	}
	records, ok := m.data[account]
	if !ok {
		return nil, false, nil
	}
	return append([]string(nil), records...), true, nil
}

func (m *mockMemoStorage) Set(account types.AccountID, records []string) error {
	m.data[account] = append([]string(nil), records...)
	m.writes[account]++
	return nil
}

type mockTransferer struct {
	balance   *uint256.Int
	known     map[types.AccountID]bool
	transfers []types.TransferRequest
}

func (m *mockTransferer) NativeTransfer(target types.AccountID, amount *uint256.Int) error {
	if !m.known[target] {
		return ErrInvalidRecipient
	}
	if m.balance.Lt(amount) {
		return ErrInsufficientBalance
	}
	m.balance = new(uint256.Int).Sub(m.balance, amount)
	m.transfers = append(m.transfers, types.TransferRequest{Target: target, Amount: amount.Clone()})
	return nil
}

// ----------------- MemoLedger -----------------

func TestMemoLedger_GetMemosUnknownAccount(t *testing.T) {
	l := NewMemoLedger(newMockMemoStorage())

	memos, err := l.GetMemos("nobody")
	require.NoError(t, err)
	assert.NotNil(t, memos)
	assert.Empty(t, memos)
}

func TestMemoLedger_AppendKeepsOrder(t *testing.T) {
	storage := newMockMemoStorage()
	l := NewMemoLedger(storage)

	require.NoError(t, l.AppendMemo("alice", "coffee", "2.5"))
	require.NoError(t, l.AppendMemo("alice", "book", "10"))
	require.NoError(t, l.AppendMemo("alice", "coffee", "2.5"))

	memos, err := l.GetMemos("alice")
	require.NoError(t, err)
	assert.Equal(t, []string{"coffee || 2.5NEAR", "book || 10NEAR", "coffee || 2.5NEAR"}, memos)

	bob, err := l.GetMemos("bob")
	require.NoError(t, err)
	assert.Empty(t, bob)

	_, exists := storage.data["bob"]
	assert.False(t, exists, "reading must not create a key")
}

func TestMemoLedger_AppendRandomMemos(t *testing.T) {
	f := fuzz.New().NilChance(0)
	storage := newMockMemoStorage()
	l := NewMemoLedger(storage)

	var want []string
	for i := 0; i < 100; i++ {
		var memo, price string
		f.Fuzz(&memo)
		f.Fuzz(&price)
		require.NoError(t, l.AppendMemo("alice", memo, price))
		want = append(want, types.FormatMemoRecord(memo, price))
	}

	memos, err := l.GetMemos("alice")
	require.NoError(t, err)
	assert.Equal(t, want, memos)
	assert.Equal(t, 100, storage.writes["alice"])
}

func TestMemoLedger_AppendTouchesOnlyCaller(t *testing.T) {
	storage := newMockMemoStorage()
	l := NewMemoLedger(storage)

	require.NoError(t, l.AppendMemo("bob", "rent", "100"))
	before, err := l.GetMemos("bob")
	require.NoError(t, err)

	require.NoError(t, l.AppendMemo("alice", "lunch", "3"))

	after, err := l.GetMemos("bob")
	require.NoError(t, err)
	assert.Equal(t, before, after)
	assert.Equal(t, 1, storage.writes["bob"])
	assert.Equal(t, 1, storage.writes["alice"])
}

func TestMemoLedger_GetMemosIsIdempotent(t *testing.T) {
	storage := newMockMemoStorage()
	l := NewMemoLedger(storage)
	require.NoError(t, l.AppendMemo("alice", "tea", "1"))

	first, err := l.GetMemos("alice")
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := l.GetMemos("alice")
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
	assert.Equal(t, 1, storage.writes["alice"])
}

func TestMemoLedger_AcceptsEmptyFields(t *testing.T) {
	l := NewMemoLedger(newMockMemoStorage())
	require.NoError(t, l.AppendMemo("alice", "", ""))

	memos, err := l.GetMemos("alice")
	require.NoError(t, err)
	assert.Equal(t, []string{" || NEAR"}, memos)
}

func TestMemoLedger_StorageErrorPropagates(t *testing.T) {
	storage := newMockMemoStorage()
	storage.getErr = errors.New("disk gone")
	l := NewMemoLedger(storage)

	assert.ErrorIs(t, l.AppendMemo("alice", "x", "1"), storage.getErr)
	_, err := l.GetMemos("alice")
	assert.ErrorIs(t, err, storage.getErr)
	assert.Zero(t, storage.writes["alice"])
}

// ----------------- PaymentExecutor -----------------

func TestPaymentExecutor_Transfer(t *testing.T) {
	transferer := &mockTransferer{
		balance: uint256.NewInt(100),
		known:   map[types.AccountID]bool{"bob": true},
	}
	p := NewPaymentExecutor(transferer)

	require.NoError(t, p.Transfer("bob", uint256.NewInt(40)))
	assert.Equal(t, uint64(60), transferer.balance.Uint64())
	require.Len(t, transferer.transfers, 1)
	assert.Equal(t, types.AccountID("bob"), transferer.transfers[0].Target)
}

func TestPaymentExecutor_Failures(t *testing.T) {
	transferer := &mockTransferer{
		balance: uint256.NewInt(10),
		known:   map[types.AccountID]bool{"bob": true},
	}
	p := NewPaymentExecutor(transferer)

	assert.ErrorIs(t, p.Transfer("bob", uint256.NewInt(11)), ErrInsufficientBalance)
	assert.ErrorIs(t, p.Transfer("carol", uint256.NewInt(1)), ErrInvalidRecipient)
	assert.ErrorIs(t, p.Transfer("bob", uint256.NewInt(0)), ErrInvalidAmount)
	assert.ErrorIs(t, p.Transfer("bob", nil), ErrInvalidAmount)

	assert.Equal(t, uint64(10), transferer.balance.Uint64())
	assert.Empty(t, transferer.transfers)
}
