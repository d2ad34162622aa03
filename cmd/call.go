package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/mezonai/decash/jsonx"
	"github.com/mezonai/decash/logx"
	"github.com/mezonai/decash/types"
	"github.com/spf13/cobra"
)

type CallConfig struct {
	Signer string
	Method string
	Args   string
}

var callConfig CallConfig

var callCmd = &cobra.Command{
	Use:   "call [flags]",
	Short: "Run a mutating contract method",
	Long: `This command runs one contract method on behalf of the signer and prints the receipt.
A failed call leaves the state untouched.

Examples:
  # Append a memo for alice
  call -s alice -m append_memo -a '{"memo_text":"coffee","price":"2.5"}'

  # Transfer 1 NEAR (in yocto) from the contract to bob
  call -s alice -m transfer -a '{"account_id":"bob","amount":"1_000_000_000_000_000_000_000_000"}'`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCall(cmd.Context(), callConfig)
	},
}

func init() {
	rootCmd.AddCommand(callCmd)

	callCmd.Flags().StringVarP(&callConfig.Signer, "signer", "s", "", "account the call is made on behalf of")
	callCmd.Flags().StringVarP(&callConfig.Method, "method", "m", "", "contract method")
	callCmd.Flags().StringVarP(&callConfig.Args, "args", "a", "{}", "method arguments as JSON")
	_ = callCmd.MarkFlagRequired("signer")
	_ = callCmd.MarkFlagRequired("method")
}

func runCall(ctx context.Context, callConfig CallConfig) error {
	if ctx == nil {
		ctx = context.Background()
	}
	rt, stores, _, err := openRuntime()
	if err != nil {
		return err
	}
	defer stores.Close()

	receipt, callErr := rt.Call(ctx, types.AccountID(callConfig.Signer), callConfig.Method, []byte(callConfig.Args))
	if receipt == nil {
		return callErr
	}
	if err := jsonx.NewEncoder(os.Stdout).Encode(receipt); err != nil {
		return err
	}
	if callErr != nil {
		logx.Error("CALL CLI", callErr)
		return fmt.Errorf("call %s failed", receipt.Hash)
	}
	return nil
}
