package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	usecase "github.com/kokoromi/redraft/internal/usecase/post"
)

func newAutoCmd() *cobra.Command {
	var (
		prompt    string
		assets    []string
		autoImage bool
		dryRun    bool
		count     int
	)

	cmd := &cobra.Command{
		Use:   "auto <title>",
		Short: "Create, validate, approve and execute in one traversal",
		Long: `Auto runs the full lifecycle unattended. Every stage still goes
through the state machine; a post that fails validation or execution
stops there and is reported, the rest of the batch continues.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c := buildContainer(dryRun)
			results, err := c.auto.Execute(cmd.Context(), usecase.CreateDraftInput{
				Title:      args[0],
				Prompt:     prompt,
				AssetPaths: assets,
				CopyAssets: true,
				AutoImage:  autoImage,
			}, count, dryRun)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			failures := 0
			for _, r := range results {
				line := fmt.Sprintf("%s  %s  %s", r.Post.ID, r.Post.Status, r.Post.Title)
				if r.Execution != nil {
					line += fmt.Sprintf("  attempt %d %s", r.Execution.Attempt, r.Execution.Outcome)
				}
				fmt.Fprintln(w, line)
				if r.Err != nil {
					failures++
					fmt.Fprintf(w, "  stopped: %v\n", r.Err)
				}
			}
			if failures > 0 {
				return fmt.Errorf("%d of %d posts did not finish", failures, len(results))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&prompt, "prompt", "p", "", "extra topic hint for generation")
	cmd.Flags().StringSliceVarP(&assets, "asset", "a", nil, "asset file path (repeatable)")
	cmd.Flags().BoolVar(&autoImage, "auto-image", false, "fetch a cover image when no assets are given")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "render evidence without touching the platform")
	cmd.Flags().IntVarP(&count, "count", "n", 1, "number of posts to create")
	return cmd
}
