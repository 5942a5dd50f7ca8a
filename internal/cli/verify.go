package cli

import (
	"github.com/spf13/cobra"

	"github.com/shirt-tracker/splitbuild/internal/verify"
)

func init() {
	rootCmd.AddCommand(verifyCmd)
}

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Check the built output",
	Long: `Run the post-build checks against apps/web-root.

Checks cover file existence, inlining, cleanup, cross-platform leakage,
placeholder resolution, content integrity, version consistency and routing.
Exits non-zero when any check fails.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		root, err := projectRoot()
		if err != nil {
			return err
		}
		return verify.New(root, cmd.OutOrStdout(), logger).Run().Err()
	},
}
