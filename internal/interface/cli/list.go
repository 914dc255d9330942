package cli

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/kokoromi/redraft/internal/domain/model"
)

func newListCmd() *cobra.Command {
	var (
		status string
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List posts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c := buildContainer(false)
			posts, err := c.query.List(cmd.Context(), model.Status(status))
			if err != nil {
				return err
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(posts)
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tSTATUS\tUPDATED\tTITLE")
			for _, p := range posts {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
					p.ID, p.Status, p.UpdatedAt.Format("2006-01-02 15:04"), p.Title)
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVarP(&status, "status", "s", "", "filter by status")
	cmd.Flags().BoolVar(&asJSON, "json", false, "output JSON")
	return cmd
}
