package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kokoromi/redraft/internal/domain/model"
)

func newApproveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "approve <post-id>",
		Short: "Approve a validated post for execution",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := model.ParsePostID(args[0])
			if err != nil {
				return err
			}
			c := buildContainer(false)
			p, err := c.approve.Execute(cmd.Context(), id)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s  %s\n", p.ID, p.Status)
			return nil
		},
	}
	return cmd
}
