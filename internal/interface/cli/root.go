package cli

import (
	"os"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/kokoromi/redraft/internal/infra/config"
)

// globalSettings holds the loaded configuration for all commands
var globalSettings *config.Settings

// NewRoot builds the command tree. Settings load before any command
// runs; a broken setting.json falls back to defaults with a warning.
func NewRoot() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "redraft",
		Short: "ReDraft post lifecycle CLI",
		Long: `ReDraft drives posts through an auditable lifecycle:
draft, validated, approved, then saved as a platform draft by browser
automation. Every revision and every attempt is kept on disk.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			home := config.DefaultHome
			if env := os.Getenv("REDRAFT_HOME"); env != "" {
				home = env
			}
			settings, err := config.LoadSettings(home)
			if err != nil {
				settings = config.NewDefaultSettings()
				InitGlobalLogger(settings.StderrLevel)
				GetLogger().Warn("settings load failed, using defaults: %v", err)
			} else {
				InitGlobalLogger(settings.StderrLevel)
			}
			globalSettings = settings
			return nil
		},
		RunE: func(c *cobra.Command, _ []string) error { return c.Help() },
	}
	cmd.AddCommand(newCreateCmd())
	cmd.AddCommand(newGenerateCmd())
	cmd.AddCommand(newListCmd())
	cmd.AddCommand(newShowCmd())
	cmd.AddCommand(newValidateCmd())
	cmd.AddCommand(newApproveCmd())
	cmd.AddCommand(newRunCmd())
	cmd.AddCommand(newRetryCmd())
	cmd.AddCommand(newRecoverCmd())
	cmd.AddCommand(newAutoCmd())
	cmd.AddCommand(newEventsCmd())
	cmd.AddCommand(newVersionCmd())
	return cmd
}

// buildContainer wires the dependency graph for one command invocation.
func buildContainer(dryRun bool) *container {
	return newContainer(globalSettings, afero.NewOsFs(), dryRun)
}
