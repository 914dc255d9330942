package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kokoromi/redraft/internal/domain/model"
)

func newEventsCmd() *cobra.Command {
	var (
		postID string
		asJSON bool
		tail   int
	)

	cmd := &cobra.Command{
		Use:   "events",
		Short: "Show the audit journal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var id model.PostID
			if postID != "" {
				parsed, err := model.ParsePostID(postID)
				if err != nil {
					return err
				}
				id = parsed
			}

			c := buildContainer(false)
			events, err := c.query.EventLog(cmd.Context(), id)
			if err != nil {
				return err
			}
			if tail > 0 && len(events) > tail {
				events = events[len(events)-tail:]
			}

			w := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(w)
				for _, ev := range events {
					if err := enc.Encode(ev); err != nil {
						return err
					}
				}
				return nil
			}
			for _, ev := range events {
				line := fmt.Sprintf("%s  %s  %s  %s", ev.Timestamp, ev.PostID, ev.Action, ev.Status)
				if ev.Attempt > 0 {
					line += fmt.Sprintf("  attempt=%d", ev.Attempt)
				}
				if ev.Error != "" {
					line += "  error=" + ev.Error
				}
				fmt.Fprintln(w, line)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&postID, "post", "", "filter by post id")
	cmd.Flags().BoolVar(&asJSON, "json", false, "output NDJSON")
	cmd.Flags().IntVar(&tail, "tail", 0, "show only the last N records")
	return cmd
}
