package store

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/mezonai/decash/db"
)

// StoreType represents the type of store implementation
type StoreType string

const (
	// LevelDBStoreType uses the LevelDB implementation
	LevelDBStoreType StoreType = "leveldb"

	// MemoryStoreType uses LevelDB over in-memory storage, nothing survives a restart
	MemoryStoreType StoreType = "memory"

	// RocksDBStoreType uses the RocksDB implementation
	RocksDBStoreType StoreType = "rocksdb"

	// RedisStoreType uses the Redis implementation
	RedisStoreType StoreType = "redis"

	// BoltStoreType uses the bbolt implementation
	BoltStoreType StoreType = "bolt"

	// PostgresStoreType keeps state in a PostgreSQL key/value table
	PostgresStoreType StoreType = "postgres"
)

// StoreConfig holds configuration for creating store instances
type StoreConfig struct {
	// Type specifies which store implementation to use
	Type StoreType `json:"type" yaml:"type" ini:"type"`

	// Directory is the database directory path (for file-based databases)
	Directory string `json:"directory" yaml:"directory" ini:"directory"`

	// RedisAddress is host:port of the Redis server
	RedisAddress string `json:"redis_address" yaml:"redis_address" ini:"redis_address"`

	// RedisDB is the Redis logical database index
	RedisDB int `json:"redis_db" yaml:"redis_db" ini:"redis_db"`

	// PostgresURL is the connection string of the PostgreSQL server
	PostgresURL string `json:"postgres_url" yaml:"postgres_url" ini:"postgres_url"`
}

// Validate validates the store configuration
func (sc *StoreConfig) Validate() error {
	switch sc.Type {
	case "":
		return fmt.Errorf("store type cannot be empty")
	case MemoryStoreType:
		return nil
	case RedisStoreType:
		if sc.RedisAddress == "" {
			return fmt.Errorf("redis address cannot be empty")
		}
		return nil
	case PostgresStoreType:
		if sc.PostgresURL == "" {
			return fmt.Errorf("postgres url cannot be empty")
		}
		return nil
	case LevelDBStoreType, RocksDBStoreType, BoltStoreType:
		if sc.Directory == "" {
			return fmt.Errorf("directory cannot be empty")
		}
		return nil
	default:
		return fmt.Errorf("unsupported store type: %s", sc.Type)
	}
}

// Stores bundles the stores of one state database
type Stores struct {
	Provider  db.IterableProvider
	Memos     *MemoStore
	Accounts  AccountStore
	StateMeta StateMetaStore
}

// Close closes the shared provider
func (s *Stores) Close() error {
	return s.Provider.Close()
}

// NewStores builds every store on top of provider
func NewStores(provider db.IterableProvider) (*Stores, error) {
	memos, err := NewMemoStore(provider)
	if err != nil {
		return nil, fmt.Errorf("failed to create memo store: %w", err)
	}
	accounts, err := NewGenericAccountStore(provider)
	if err != nil {
		return nil, fmt.Errorf("failed to create account store: %w", err)
	}
	return &Stores{
		Provider:  provider,
		Memos:     memos,
		Accounts:  accounts,
		StateMeta: NewGenericStateMetaStore(provider),
	}, nil
}

// CreateStores opens the configured provider and builds the stores on it
func CreateStores(config *StoreConfig) (*Stores, error) {
	provider, err := CreateProvider(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create provider: %w", err)
	}
	stores, err := NewStores(provider)
	if err != nil {
		_ = provider.Close()
		return nil, err
	}
	return stores, nil
}

// CreateProvider creates a database provider based on the configuration
func CreateProvider(config *StoreConfig) (db.IterableProvider, error) {
	if config == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	switch config.Type {
	case LevelDBStoreType:
		return db.NewLevelDBProvider(config.Directory)

	case MemoryStoreType:
		return db.NewMemLevelDBProvider()

	case RocksDBStoreType:
		return db.NewRocksDBProvider(config.Directory)

	case RedisStoreType:
		return db.NewRedisProvider(config.RedisAddress, config.RedisDB)

	case BoltStoreType:
		if err := os.MkdirAll(config.Directory, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create directory %s: %w", config.Directory, err)
		}
		return db.NewBoltDBProvider(filepath.Join(config.Directory, "state.bolt"))

	case PostgresStoreType:
		return db.NewPostgresProvider(config.PostgresURL)

	default:
		return nil, fmt.Errorf("unsupported store type: %s", config.Type)
	}
}
