package vm

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/holiman/uint256"
	"github.com/mezonai/decash/contract"
	"github.com/mezonai/decash/db"
	"github.com/mezonai/decash/errors"
	"github.com/mezonai/decash/events"
	"github.com/mezonai/decash/exception"
	"github.com/mezonai/decash/logx"
	"github.com/mezonai/decash/monitoring"
	"github.com/mezonai/decash/store"
	"github.com/mezonai/decash/stringutil"
	"github.com/mezonai/decash/types"
	"github.com/mr-tron/base58"
)

const methodLabelBatch = "batch"

// Runtime executes contract calls one at a time against the state database. Each call either
// commits all of its writes in a single batch or none of them.
type Runtime struct {
	mu         sync.Mutex
	provider   db.DatabaseProvider
	txManager  *db.DBTxManager
	accounts   store.AccountStore
	stateMeta  store.StateMetaStore
	contract   *contract.DeCash
	contractID types.AccountID
	eventBus   *events.EventBus
}

type Option func(*Runtime)

// WithEventBus publishes call outcomes to eb
func WithEventBus(eb *events.EventBus) Option {
	return func(r *Runtime) {
		r.eventBus = eb
	}
}

// NewRuntime creates a runtime for c deployed at contractID, storing state in provider
func NewRuntime(provider db.DatabaseProvider, c *contract.DeCash, contractID types.AccountID, opts ...Option) (*Runtime, error) {
	if provider == nil {
		return nil, fmt.Errorf("provider cannot be nil")
	}
	if c == nil {
		return nil, fmt.Errorf("contract cannot be nil")
	}
	if err := types.ValidateAccountID(contractID); err != nil {
		return nil, fmt.Errorf("invalid contract account: %w", err)
	}

	accounts, err := store.NewGenericAccountStore(provider)
	if err != nil {
		return nil, err
	}

	r := &Runtime{
		provider:   provider,
		txManager:  db.NewDBTxManager(provider),
		accounts:   accounts,
		stateMeta:  store.NewGenericStateMetaStore(provider),
		contract:   c,
		contractID: contractID,
	}
	for _, opt := range opts {
		opt(r)
	}
	monitoring.InitMetrics()
	return r, nil
}

// ContractID returns the account the contract is deployed at
func (r *Runtime) ContractID() types.AccountID {
	return r.contractID
}

// Call runs a single method on behalf of signer
func (r *Runtime) Call(ctx context.Context, signer types.AccountID, method string, args []byte) (*Receipt, error) {
	return r.Execute(ctx, NewCallTransaction(signer, method, args))
}

// Execute runs every action of tx in order within one session. The returned error is a
// *errors.CallError when the transaction was aborted; the receipt is returned in both cases.
func (r *Runtime) Execute(ctx context.Context, tx *Transaction) (*Receipt, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := tx.Validate(); err != nil {
		return nil, errors.Newf(err, errors.ErrCodeInvalidArgs, "%s: %v", errors.ErrMsgInvalidArgs, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	start := time.Now()
	label := r.methodLabel(tx)

	lastSeq, err := r.stateMeta.GetSequence()
	if err != nil {
		return nil, errors.Newf(err, errors.ErrCodeInternal, errors.ErrMsgInternal)
	}
	seq := lastSeq + 1
	receipt := &Receipt{
		Hash:   tx.Hash(seq),
		Signer: tx.Signer,
	}

	sess, err := newSession(r.provider, tx.Signer, r.contractID)
	if err != nil {
		return nil, errors.Newf(err, errors.ErrCodeInternal, errors.ErrMsgInternal)
	}

	var result []byte
	err = exception.Recover("VM", func() error {
		for _, action := range tx.Actions {
			out, err := r.contract.Invoke(sess, action.Method, action.Args)
			if err != nil {
				return err
			}
			result = out
		}
		return nil
	})
	if err == nil {
		err = r.commit(sess, seq, receipt)
	}

	if err != nil {
		sess.discard()
		callErr := errors.AsCallError(err)
		receipt.Status = ReceiptFailure
		receipt.Error = callErr

		logx.Warn("VM", fmt.Sprintf("Call aborted | receipt=%s | signer=%s | method=%s | error=%v", stringutil.ShortenLog(receipt.Hash), tx.Signer, label, err))
		monitoring.RecordCall(label, monitoring.CallFailed, time.Since(start))
		r.publish(events.NewCallFailed(receipt.Hash, tx.Signer, label, callErr.Message))
		return receipt, callErr
	}

	receipt.Status = ReceiptSuccess
	receipt.Result = result
	receipt.Logs = sess.logs

	logx.Info("VM", fmt.Sprintf("Call committed | seq=%d | receipt=%s | signer=%s | method=%s", seq, stringutil.ShortenLog(receipt.Hash), tx.Signer, label))
	monitoring.RecordCall(label, monitoring.CallSucceeded, time.Since(start))
	monitoring.SetSequence(seq)
	r.publishCommitted(receipt, sess)
	return receipt, nil
}

// commit records the sequence and delta hash in the session, then writes the session in one batch
func (r *Runtime) commit(sess *session, seq uint64, receipt *Receipt) error {
	delta := sess.overlay.DeltaHash()

	meta := store.NewGenericStateMetaStore(sess.overlay)
	if err := meta.SetSequence(seq); err != nil {
		return err
	}
	if err := meta.SetDeltaHash(seq, delta); err != nil {
		return err
	}

	if err := r.txManager.CommitOverlay(sess.overlay); err != nil {
		return err
	}

	receipt.Seq = seq
	receipt.DeltaHash = base58.Encode(delta[:])
	return nil
}

func (r *Runtime) publishCommitted(receipt *Receipt, sess *session) {
	for _, w := range sess.memos.writes {
		monitoring.IncreaseMemosAppended()
		r.publish(events.NewMemoAppended(receipt.Hash, w.account, w.record))
	}
	for _, t := range sess.bank.settled {
		monitoring.RecordTransfer(t.Amount)
		r.publish(events.NewNativeTransferred(receipt.Hash, r.contractID, t.Target, t.Amount))
	}
}

func (r *Runtime) publish(event events.ContractEvent) {
	if r.eventBus != nil {
		r.eventBus.Publish(event)
	}
}

// View runs a read-only method. Nothing it does is persisted.
func (r *Runtime) View(ctx context.Context, method string, args []byte) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m, ok := r.contract.Method(method)
	if !ok {
		return nil, errors.Newf(nil, errors.ErrCodeMethodNotFound, errors.ErrMsgMethodNotFound, method)
	}
	if !m.View {
		return nil, errors.Newf(nil, errors.ErrCodeNotViewMethod, errors.ErrMsgNotViewMethod, method)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	sess, err := newSession(r.provider, "", r.contractID)
	if err != nil {
		return nil, errors.Newf(err, errors.ErrCodeInternal, errors.ErrMsgInternal)
	}
	defer sess.discard()

	var result []byte
	err = exception.Recover("VM VIEW", func() error {
		var err error
		result, err = r.contract.Invoke(sess, method, args)
		return err
	})
	if err != nil {
		return nil, errors.AsCallError(err)
	}
	return result, nil
}

// ApplyGenesis registers accounts with their initial balances. Accounts that already exist keep
// their current balance.
func (r *Runtime) ApplyGenesis(accounts []*types.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	overlay := db.NewOverlayProvider(r.provider)
	overlayAccounts, err := store.NewGenericAccountStore(overlay)
	if err != nil {
		return err
	}

	for _, acc := range accounts {
		if err := types.ValidateAccountID(acc.ID); err != nil {
			return fmt.Errorf("invalid genesis account: %w", err)
		}
		existed, err := overlayAccounts.ExistsByID(acc.ID)
		if err != nil {
			return fmt.Errorf("could not check existence of account %s: %w", acc.ID, err)
		}
		if existed {
			logx.Info("VM", fmt.Sprintf("Genesis account %s already exists, skipped", acc.ID))
			continue
		}
		if err := overlayAccounts.Store(acc); err != nil {
			return fmt.Errorf("could not create genesis account %s: %w", acc.ID, err)
		}
	}

	exists, err := overlayAccounts.ExistsByID(r.contractID)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("contract account %s is missing from genesis", r.contractID)
	}

	deployed, err := r.stateMeta.GetContractAccount()
	if err != nil {
		return err
	}
	if deployed != "" && deployed != r.contractID {
		return fmt.Errorf("state belongs to contract %s, not %s", deployed, r.contractID)
	}
	if err := store.NewGenericStateMetaStore(overlay).SetContractAccount(r.contractID); err != nil {
		return err
	}

	return r.txManager.CommitOverlay(overlay)
}

// Balance returns the committed native balance of id
func (r *Runtime) Balance(id types.AccountID) (*uint256.Int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	acc, err := r.accounts.GetByID(id)
	if err != nil {
		return nil, err
	}
	if acc == nil {
		return nil, fmt.Errorf("account %s does not exist", id)
	}
	return acc.Balance, nil
}

// Accounts lists every registered account with its committed balance
func (r *Runtime) Accounts() ([]*types.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.accounts.List()
}

// Sequence returns the number of committed transactions
func (r *Runtime) Sequence() (uint64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stateMeta.GetSequence()
}

func (r *Runtime) methodLabel(tx *Transaction) string {
	if len(tx.Actions) != 1 {
		return methodLabelBatch
	}
	if _, ok := r.contract.Method(tx.Actions[0].Method); !ok {
		return "unknown"
	}
	return tx.Actions[0].Method
}
