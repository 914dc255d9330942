package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kokoromi/redraft/internal/domain/model"
)

func newRecoverCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "recover [post-id]",
		Short: "Close execution records orphaned by a crash",
		Long: `Recover finds executions that were opened but never closed, closes
them as failed with the interrupted kind and moves their posts to
failed. With no argument every post is swept.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c := buildContainer(false)
			w := cmd.OutOrStdout()

			if len(args) == 1 {
				id, err := model.ParsePostID(args[0])
				if err != nil {
					return err
				}
				rec, err := c.recover.Execute(cmd.Context(), id)
				if err != nil {
					return err
				}
				if rec == nil {
					fmt.Fprintf(w, "%s  nothing to recover\n", id)
					return nil
				}
				fmt.Fprintf(w, "%s  closed attempt %d (%s)\n", id, rec.Attempt, rec.ID)
				return nil
			}

			closed, err := c.recover.ExecuteAll(cmd.Context())
			if err != nil {
				return err
			}
			if len(closed) == 0 {
				fmt.Fprintln(w, "nothing to recover")
				return nil
			}
			for _, rec := range closed {
				fmt.Fprintf(w, "%s  closed attempt %d (%s)\n", rec.PostID, rec.Attempt, rec.ID)
			}
			return nil
		},
	}
	return cmd
}
