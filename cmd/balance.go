package cmd

import (
	"fmt"

	"github.com/mezonai/decash/types"
	"github.com/spf13/cobra"
)

var balanceAccount string

var balanceCmd = &cobra.Command{
	Use:   "balance",
	Short: "Show native balances",
	Long:  "Show the committed native balance of one account, or of every registered account when --account is omitted.",
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, stores, _, err := openRuntime()
		if err != nil {
			return err
		}
		defer stores.Close()

		if balanceAccount != "" {
			balance, err := rt.Balance(types.AccountID(balanceAccount))
			if err != nil {
				return err
			}
			fmt.Printf("%s\t%s\n", balanceAccount, balance.Dec())
			return nil
		}

		accounts, err := rt.Accounts()
		if err != nil {
			return err
		}
		for _, acc := range accounts {
			fmt.Printf("%s\t%s\n", acc.ID, acc.Balance.Dec())
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(balanceCmd)
	balanceCmd.Flags().StringVar(&balanceAccount, "account", "", "account id")
}
