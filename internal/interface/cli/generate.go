package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kokoromi/redraft/internal/domain/model"
	usecase "github.com/kokoromi/redraft/internal/usecase/post"
)

func newGenerateCmd() *cobra.Command {
	var (
		title      string
		prompt     string
		noFallback bool
	)

	cmd := &cobra.Command{
		Use:   "generate <post-id>",
		Short: "Regenerate content for an existing draft",
		Long: `Generate appends a new revision to a draft post and points the
post at it. Earlier revisions stay in the log; the post does not change
state. Only draft posts regenerate.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := model.ParsePostID(args[0])
			if err != nil {
				return err
			}
			c := buildContainer(false)
			p, err := c.create.Regenerate(cmd.Context(), id, usecase.CreateDraftInput{
				Title:      title,
				Prompt:     prompt,
				NoFallback: noFallback,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s  %s  %s  revision %s\n", p.ID, p.Status, p.Title, p.CurrentRevisionID)
			return nil
		},
	}

	cmd.Flags().StringVarP(&title, "title", "t", "", "replace the title hint (default: current title)")
	cmd.Flags().StringVarP(&prompt, "prompt", "p", "", "extra topic hint for generation")
	cmd.Flags().BoolVar(&noFallback, "no-fallback", false, "fail instead of using offline fallback content")
	return cmd
}
