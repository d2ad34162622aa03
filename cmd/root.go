package cmd

import (
	"fmt"
	"os"

	"github.com/mezonai/decash/config"
	"github.com/mezonai/decash/contract"
	"github.com/mezonai/decash/logx"
	"github.com/mezonai/decash/store"
	"github.com/mezonai/decash/vm"
	"github.com/spf13/cobra"
)

const defaultNodeConfigPath = "config/node.ini"

var (
	nodeConfigPath string
	storeType      string
	storeDir       string
)

var rootCmd = &cobra.Command{
	Use:   "decash",
	Short: "DeCash memo ledger CLI",
	Long:  "Command line interface for running calls against a local DeCash memo ledger state.",
}

func init() {
	rootCmd.PersistentFlags().StringVar(&nodeConfigPath, "config", defaultNodeConfigPath, "Path to node.ini")
	rootCmd.PersistentFlags().StringVar(&storeType, "store", "", "Override store type (leveldb, memory, rocksdb, redis, bolt, postgres)")
	rootCmd.PersistentFlags().StringVar(&storeDir, "data-dir", "", "Override store directory")
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		logx.Error("CMD", "Command execution failed:", err)
		os.Exit(1)
	}
}

// loadNodeConfig reads node.ini, falling back to defaults when the default path is absent
func loadNodeConfig() (*config.NodeConfig, error) {
	var nodeCfg *config.NodeConfig
	if _, err := os.Stat(nodeConfigPath); os.IsNotExist(err) && nodeConfigPath == defaultNodeConfigPath {
		logx.Info("CMD", "No node config found, using defaults")
		nodeCfg = config.DefaultNodeConfig()
	} else {
		nodeCfg, err = config.LoadNodeConfig(nodeConfigPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load node config: %w", err)
		}
	}

	if storeType != "" {
		nodeCfg.Store.Type = store.StoreType(storeType)
	}
	if storeDir != "" {
		nodeCfg.Store.Directory = storeDir
	}
	if err := nodeCfg.Store.Validate(); err != nil {
		return nil, err
	}
	return nodeCfg, nil
}

// openRuntime opens the configured state and attaches a runtime for the contract recorded at genesis
func openRuntime(opts ...vm.Option) (*vm.Runtime, *store.Stores, *config.NodeConfig, error) {
	nodeCfg, err := loadNodeConfig()
	if err != nil {
		return nil, nil, nil, err
	}

	stores, err := store.CreateStores(&nodeCfg.Store)
	if err != nil {
		return nil, nil, nil, err
	}

	contractID, err := stores.StateMeta.GetContractAccount()
	if err != nil {
		_ = stores.Close()
		return nil, nil, nil, err
	}
	if contractID == "" {
		_ = stores.Close()
		return nil, nil, nil, fmt.Errorf("state at %s is not initialized, run `decash init` first", nodeCfg.Store.Directory)
	}

	rt, err := vm.NewRuntime(stores.Provider, contract.New(), contractID, opts...)
	if err != nil {
		_ = stores.Close()
		return nil, nil, nil, err
	}
	return rt, stores, nodeCfg, nil
}
