package config

import "github.com/mezonai/decash/store"

// GenesisAccount is an account registered before the first call
type GenesisAccount struct {
	AccountID string `yaml:"account_id"`
	// Balance in yocto units, decimal, '_' allowed as separator
	Balance string `yaml:"balance"`
}

// GenesisConfig holds the configuration from genesis.yml
type GenesisConfig struct {
	ContractAccount string           `yaml:"contract_account"`
	ContractBalance string           `yaml:"contract_balance"`
	Accounts        []GenesisAccount `yaml:"accounts"`
}

// ConfigFile is the top-level structure for genesis.yml
type ConfigFile struct {
	Config GenesisConfig `yaml:"config"`
}

type MetricsConfig struct {
	ListenAddr string `ini:"listen_addr"`
}

// NodeConfig is read from node.ini
type NodeConfig struct {
	Store   store.StoreConfig
	Metrics MetricsConfig
}
