package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kokoromi/redraft/internal/domain/model"
)

func newShowCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "show <post-id>",
		Short: "Show one post with its revision and execution history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := model.ParsePostID(args[0])
			if err != nil {
				return err
			}
			c := buildContainer(false)
			detail, err := c.query.Get(cmd.Context(), id)
			if err != nil {
				return err
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(detail)
			}

			out := cmd.OutOrStdout()
			p := detail.Post
			fmt.Fprintf(out, "ID:      %s\n", p.ID)
			fmt.Fprintf(out, "Type:    %s\n", p.Type)
			fmt.Fprintf(out, "Status:  %s\n", p.Status)
			if p.Classification != "" {
				fmt.Fprintf(out, "Class:   %s\n", p.Classification)
			}
			fmt.Fprintf(out, "Title:   %s\n", p.Title)
			fmt.Fprintf(out, "Updated: %s\n", p.UpdatedAt.Format("2006-01-02 15:04:05"))
			if detail.Interrupted != nil {
				fmt.Fprintf(out, "WARNING: attempt %d (%s) never finished; run recover\n",
					detail.Interrupted.Attempt, detail.Interrupted.ID)
			}

			if len(detail.Revisions) > 0 {
				fmt.Fprintf(out, "\nRevisions (%d):\n", len(detail.Revisions))
				for _, r := range detail.Revisions {
					marker := " "
					if r.ID == p.CurrentRevisionID {
						marker = "*"
					}
					fmt.Fprintf(out, "  %s %s  %s  %s\n", marker, r.ID, r.Source, r.Title)
				}
			}
			if len(detail.Executions) > 0 {
				fmt.Fprintf(out, "\nExecutions (%d):\n", len(detail.Executions))
				for _, e := range detail.Executions {
					line := fmt.Sprintf("  #%d %s  %s  %s", e.Attempt, e.ID, e.Source, e.Outcome)
					if e.Error != nil {
						line += fmt.Sprintf("  [%s] %s", e.Error.Kind, e.Error.Message)
					}
					fmt.Fprintln(out, line)
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "output JSON")
	return cmd
}
