package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kokoromi/redraft/internal/buildinfo"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "redraft %s\n", buildinfo.GetVersion())
		},
	}
}
