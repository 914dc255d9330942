package cli

import (
	"github.com/spf13/cobra"

	"github.com/kokoromi/redraft/internal/domain/model"
)

func newRetryCmd() *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "retry <post-id>",
		Short: "Re-approve a failed post and run another attempt",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := model.ParsePostID(args[0])
			if err != nil {
				return err
			}
			c := buildContainer(dryRun)
			out, err := c.retry.Execute(cmd.Context(), id, dryRun)
			if out != nil {
				printExecution(cmd, out)
			}
			return err
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "render evidence without touching the platform")
	return cmd
}
