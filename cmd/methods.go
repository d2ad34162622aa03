package cmd

import (
	"os"

	"github.com/mezonai/decash/contract"
	"github.com/mezonai/decash/jsonx"
	"github.com/spf13/cobra"
)

var methodsCmd = &cobra.Command{
	Use:   "methods",
	Short: "Print the contract methods and the JSON schema of their arguments",
	RunE: func(cmd *cobra.Command, args []string) error {
		encoder := jsonx.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(contract.New().ABI())
	},
}

func init() {
	rootCmd.AddCommand(methodsCmd)
}
