package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/kokoromi/redraft/internal/domain/model"
	usecase "github.com/kokoromi/redraft/internal/usecase/post"
)

func newRunCmd() *cobra.Command {
	var (
		dryRun      bool
		force       bool
		forceUnsafe bool
		loginHoldS  int
	)

	cmd := &cobra.Command{
		Use:   "run <post-id>",
		Short: "Execute the save-as-draft automation for an approved post",
		Long: `Run opens an execution record, drives the browser automation and
closes the record with the outcome. --force approves the post on the
spot; the bypass is audited in the execution log. Content-safety rules
still hold under --force unless --force-unsafe is also given.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := model.ParsePostID(args[0])
			if err != nil {
				return err
			}
			c := buildContainer(dryRun)
			out, err := c.run.Execute(cmd.Context(), usecase.ExecuteInput{
				PostID:      id,
				Force:       force,
				ForceUnsafe: forceUnsafe,
				DryRun:      dryRun,
				LoginHold:   time.Duration(loginHoldS) * time.Second,
			})
			if out != nil {
				printExecution(cmd, out)
			}
			return err
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "render evidence without touching the platform")
	cmd.Flags().BoolVar(&force, "force", false, "approve on the spot, audited as forced")
	cmd.Flags().BoolVar(&forceUnsafe, "force-unsafe", false, "with --force, bypass content-safety rules too")
	cmd.Flags().IntVar(&loginHoldS, "login-hold", 0, "extra seconds to wait for manual login")
	return cmd
}

func printExecution(cmd *cobra.Command, out *usecase.ExecuteOutput) {
	w := cmd.OutOrStdout()
	e := out.Execution
	fmt.Fprintf(w, "%s  attempt %d  %s  %s\n", out.Post.ID, e.Attempt, e.Outcome, out.Post.Status)
	if e.Error != nil {
		fmt.Fprintf(w, "  error: [%s] %s\n", e.Error.Kind, e.Error.Message)
	}
	if e.EvidenceRef != "" {
		fmt.Fprintf(w, "  evidence: %s\n", e.EvidenceRef)
	}
}
