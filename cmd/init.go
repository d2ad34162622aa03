package cmd

import (
	"fmt"

	"github.com/mezonai/decash/config"
	"github.com/mezonai/decash/contract"
	"github.com/mezonai/decash/logx"
	"github.com/mezonai/decash/store"
	"github.com/mezonai/decash/types"
	"github.com/mezonai/decash/vm"
	"github.com/spf13/cobra"
)

var initGenesisPath string

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize the state database from a genesis file",
	Long: `Initialize the state database by:
- Creating the configured store (leveldb, rocksdb, redis or bolt)
- Registering the contract account and genesis accounts with their balances
- Recording which account the contract is deployed at

Accounts that already exist keep their balance, so running init again is safe.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return initializeState()
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().StringVar(&initGenesisPath, "genesis", "config/genesis.yml", "Path to genesis configuration file")
}

func initializeState() error {
	nodeCfg, err := loadNodeConfig()
	if err != nil {
		return err
	}

	genesis, err := config.LoadGenesisConfig(initGenesisPath)
	if err != nil {
		return fmt.Errorf("failed to load genesis config: %w", err)
	}
	accounts, err := genesis.GenesisAccounts()
	if err != nil {
		return fmt.Errorf("invalid genesis config: %w", err)
	}

	stores, err := store.CreateStores(&nodeCfg.Store)
	if err != nil {
		return err
	}
	defer stores.Close()

	rt, err := vm.NewRuntime(stores.Provider, contract.New(), types.AccountID(genesis.ContractAccount))
	if err != nil {
		return err
	}
	if err := rt.ApplyGenesis(accounts); err != nil {
		return fmt.Errorf("failed to apply genesis: %w", err)
	}

	logx.Info("INIT", fmt.Sprintf("State initialized | store=%s | contract=%s | accounts=%d", nodeCfg.Store.Type, genesis.ContractAccount, len(accounts)))
	return nil
}
