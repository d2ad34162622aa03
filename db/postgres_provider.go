package db

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/mezonai/decash/logx"
	"github.com/syndtr/goleveldb/leveldb/util"
)

const (
	postgresConnectRetries = 5
	postgresRetryDelay     = 3 * time.Second

	createKVTableSQL = `
	CREATE TABLE IF NOT EXISTS decash_kv (
		key   BYTEA PRIMARY KEY,
		value BYTEA NOT NULL
	);`
	upsertKVSQL = `INSERT INTO decash_kv (key, value) VALUES ($1, $2)
	ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value`
)

// PostgresProvider implements IterableProvider on a single key/value table. A batch is written
// inside one SQL transaction.
type PostgresProvider struct {
	db *sql.DB
}

// NewPostgresProvider connects to databaseURL, retrying while the server comes up, and creates
// the key/value table if needed
func NewPostgresProvider(databaseURL string) (IterableProvider, error) {
	var lastErr error
	for attempt := 0; attempt < postgresConnectRetries; attempt++ {
		if attempt > 0 {
			logx.Warn("POSTGRES", fmt.Sprintf("Retrying connection (attempt %d/%d) after error: %v", attempt+1, postgresConnectRetries, lastErr))
			time.Sleep(postgresRetryDelay)
		}

		conn, err := sql.Open("postgres", databaseURL)
		if err != nil {
			lastErr = fmt.Errorf("failed to open database connection: %w", err)
			continue
		}
		if err := conn.Ping(); err != nil {
			conn.Close()
			lastErr = fmt.Errorf("failed to ping database: %w", err)
			continue
		}
		if _, err := conn.Exec(createKVTableSQL); err != nil {
			conn.Close()
			return nil, fmt.Errorf("failed to create decash_kv table: %w", err)
		}

		logx.Info("POSTGRES", "Database connection established")
		return &PostgresProvider{db: conn}, nil
	}
	return nil, fmt.Errorf("failed to connect to database after %d attempts: %w", postgresConnectRetries, lastErr)
}

func (p *PostgresProvider) Get(key []byte) ([]byte, error) {
	var value []byte
	err := p.db.QueryRow(`SELECT value FROM decash_kv WHERE key = $1`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return value, nil
}

// GetBatch fetches every key in one query
func (p *PostgresProvider) GetBatch(keys [][]byte) (map[string][]byte, error) {
	result := make(map[string][]byte, len(keys))
	if len(keys) == 0 {
		return result, nil
	}

	rows, err := p.db.Query(`SELECT key, value FROM decash_kv WHERE key = ANY($1)`, pq.ByteaArray(keys))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var key, value []byte
		if err := rows.Scan(&key, &value); err != nil {
			return nil, err
		}
		result[string(key)] = value
	}
	return result, rows.Err()
}

func (p *PostgresProvider) Put(key, value []byte) error {
	_, err := p.db.Exec(upsertKVSQL, key, value)
	return err
}

func (p *PostgresProvider) Delete(key []byte) error {
	_, err := p.db.Exec(`DELETE FROM decash_kv WHERE key = $1`, key)
	return err
}

func (p *PostgresProvider) Has(key []byte) (bool, error) {
	var exists bool
	err := p.db.QueryRow(`SELECT EXISTS(SELECT 1 FROM decash_kv WHERE key = $1)`, key).Scan(&exists)
	return exists, err
}

func (p *PostgresProvider) Close() error {
	return p.db.Close()
}

func (p *PostgresProvider) Batch() DatabaseBatch {
	return &PostgresBatch{db: p.db}
}

// IteratePrefix walks keys in byte order, bytea comparison being bytewise
func (p *PostgresProvider) IteratePrefix(prefix []byte, fn func(key, value []byte) bool) error {
	r := util.BytesPrefix(prefix)

	var (
		rows *sql.Rows
		err  error
	)
	if r.Limit == nil {
		rows, err = p.db.Query(`SELECT key, value FROM decash_kv WHERE key >= $1 ORDER BY key`, r.Start)
	} else {
		rows, err = p.db.Query(`SELECT key, value FROM decash_kv WHERE key >= $1 AND key < $2 ORDER BY key`, r.Start, r.Limit)
	}
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var key, value []byte
		if err := rows.Scan(&key, &value); err != nil {
			return err
		}
		if !fn(key, value) {
			return nil
		}
	}
	return rows.Err()
}

type postgresOp struct {
	key    []byte
	value  []byte
	delete bool
}

// PostgresBatch buffers operations until Write
type PostgresBatch struct {
	db  *sql.DB
	ops []postgresOp
}

func (b *PostgresBatch) Put(key, value []byte) {
	b.ops = append(b.ops, postgresOp{key: append([]byte(nil), key...), value: append([]byte(nil), value...)})
}

func (b *PostgresBatch) Delete(key []byte) {
	b.ops = append(b.ops, postgresOp{key: append([]byte(nil), key...), delete: true})
}

// Write applies every buffered operation in one transaction
func (b *PostgresBatch) Write() error {
	if len(b.ops) == 0 {
		return nil
	}

	tx, err := b.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	for _, op := range b.ops {
		if op.delete {
			_, err = tx.Exec(`DELETE FROM decash_kv WHERE key = $1`, op.key)
		} else {
			_, err = tx.Exec(upsertKVSQL, op.key, op.value)
		}
		if err != nil {
			_ = tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

func (b *PostgresBatch) Reset() {
	b.ops = nil
}

func (b *PostgresBatch) Close() error {
	b.ops = nil
	return nil
}
