package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kokoromi/redraft/internal/domain/model"
)

func newValidateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <post-id>",
		Short: "Validate a post's content against the publishing rules",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := model.ParsePostID(args[0])
			if err != nil {
				return err
			}
			c := buildContainer(false)
			out, err := c.validate.Execute(cmd.Context(), id)
			if out != nil {
				w := cmd.OutOrStdout()
				if out.Result.OK() {
					fmt.Fprintf(w, "%s  %s  ok\n", out.Post.ID, out.Post.Status)
				} else {
					fmt.Fprintf(w, "%s  %s\n", out.Post.ID, out.Post.Status)
					for _, v := range out.Result.Violations {
						fmt.Fprintf(w, "  violation: %s\n", v)
					}
				}
				for _, warn := range out.Result.Warnings {
					fmt.Fprintf(w, "  warning: %s\n", warn)
				}
			}
			return err
		},
	}
	return cmd
}
