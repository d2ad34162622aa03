//go:build !rocksdb
// +build !rocksdb

package db

import "fmt"

// NewRocksDBProvider creates a stub that returns an error when rocksdb is not available
func NewRocksDBProvider(directory string) (IterableProvider, error) {
	return nil, fmt.Errorf("RocksDB support not compiled in, build with -tags rocksdb to open %s", directory)
}
