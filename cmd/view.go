package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var (
	viewMethod string
	viewArgs   string
)

var viewCmd = &cobra.Command{
	Use:   "view [flags]",
	Short: "Run a read-only contract method",
	Long: `This command runs a view method against the committed state and prints its JSON result.

Examples:
  view -m get_memos -a '{"user":"alice"}'`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		rt, stores, _, err := openRuntime()
		if err != nil {
			return err
		}
		defer stores.Close()

		result, err := rt.View(ctx, viewMethod, []byte(viewArgs))
		if err != nil {
			return err
		}
		fmt.Println(string(result))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(viewCmd)
	viewCmd.Flags().StringVarP(&viewMethod, "method", "m", "", "contract view method")
	viewCmd.Flags().StringVarP(&viewArgs, "args", "a", "{}", "method arguments as JSON")
	_ = viewCmd.MarkFlagRequired("method")
}
