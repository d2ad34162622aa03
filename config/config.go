package config

import (
	"fmt"
	"os"

	"github.com/mezonai/decash/logx"
	"github.com/mezonai/decash/store"
	"github.com/mezonai/decash/types"
	"gopkg.in/ini.v1"
	"gopkg.in/yaml.v3"
)

const (
	DefaultStoreDirectory = "./data"
	DefaultRedisAddress   = "localhost:6379"
	DefaultMetricsAddr    = ":9100"
)

// LoadGenesisConfig reads and parses the genesis.yml file
func LoadGenesisConfig(path string) (*GenesisConfig, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var cfgFile ConfigFile
	decoder := yaml.NewDecoder(file)
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfgFile); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	logx.Info("CONFIG", fmt.Sprintf("Loaded genesis: contract=%s, accounts=%d", cfgFile.Config.ContractAccount, len(cfgFile.Config.Accounts)))
	return &cfgFile.Config, nil
}

// GenesisAccounts converts the genesis config into accounts, the contract account first
func (g *GenesisConfig) GenesisAccounts() ([]*types.Account, error) {
	if g.ContractAccount == "" {
		return nil, fmt.Errorf("contract_account is required")
	}

	contractBalance, err := types.ParseAmount(g.ContractBalance)
	if err != nil {
		return nil, fmt.Errorf("contract_balance: %w", err)
	}
	accounts := []*types.Account{{ID: types.AccountID(g.ContractAccount), Balance: contractBalance}}
	seen := map[string]bool{g.ContractAccount: true}

	for _, a := range g.Accounts {
		if seen[a.AccountID] {
			return nil, fmt.Errorf("duplicate genesis account %s", a.AccountID)
		}
		seen[a.AccountID] = true

		balance, err := types.ParseAmount(a.Balance)
		if err != nil {
			return nil, fmt.Errorf("balance of %s: %w", a.AccountID, err)
		}
		accounts = append(accounts, &types.Account{ID: types.AccountID(a.AccountID), Balance: balance})
	}

	for _, acc := range accounts {
		if err := types.ValidateAccountID(acc.ID); err != nil {
			return nil, err
		}
	}
	return accounts, nil
}

// LoadNodeConfig reads the [store] and [metrics] sections from an .ini file
func LoadNodeConfig(path string) (*NodeConfig, error) {
	cfg, err := ini.Load(path)
	if err != nil {
		return nil, err
	}

	nodeCfg := DefaultNodeConfig()
	if err := cfg.Section("store").MapTo(&nodeCfg.Store); err != nil {
		return nil, fmt.Errorf("invalid [store] section: %w", err)
	}
	if err := cfg.Section("metrics").MapTo(&nodeCfg.Metrics); err != nil {
		return nil, fmt.Errorf("invalid [metrics] section: %w", err)
	}
	if err := nodeCfg.Store.Validate(); err != nil {
		return nil, err
	}
	return nodeCfg, nil
}

// DefaultNodeConfig is used for every value missing from node.ini
func DefaultNodeConfig() *NodeConfig {
	return &NodeConfig{
		Store: store.StoreConfig{
			Type:         store.LevelDBStoreType,
			Directory:    DefaultStoreDirectory,
			RedisAddress: DefaultRedisAddress,
			RedisDB:      3,
		},
		Metrics: MetricsConfig{ListenAddr: DefaultMetricsAddr},
	}
}
