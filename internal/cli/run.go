package cli

import (
	"fmt"

	"github.com/specialistvlad/appgraph/internal/app"
	"github.com/spf13/cobra"
)

func newRunCommand(flags *globalFlags, opts []app.Option) *cobra.Command {
	var (
		configPath      string
		watch           bool
		healthcheckPort int
		maxTasks        int
	)

	cmd := &cobra.Command{
		Use:   "run [CONFIG_PATH]",
		Short: "Initialize the application graph and run until interrupted",
		Long: `Builds the graph from the compiled-in modules, initializes it and blocks
until SIGINT or SIGTERM, then releases every node in reverse order.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if configPath == "" && len(args) > 0 {
				configPath = args[0]
			}
			cfg, err := flags.config(app.Config{
				ConfigPath:      configPath,
				Watch:           watch,
				HealthcheckPort: healthcheckPort,
				MaxTasks:        maxTasks,
			})
			if err != nil {
				return err
			}

			a := app.NewApp(cmd.OutOrStdout(), cfg, opts...)
			running, err := a.Run(cmd.Context())
			if err != nil {
				return &ExitError{Code: 1, Message: err.Error()}
			}

			<-running.Done()
			if err := running.Err(); err != nil {
				return &ExitError{Code: 1, Message: fmt.Sprintf("release failed: %v", err)}
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVarP(&configPath, "config", "c", envOr("APPGRAPH_CONFIG", ""), "Path to the HCL settings file.")
	f.BoolVar(&watch, "watch", envBoolOr("APPGRAPH_WATCH", false), "Refresh the configuration when the settings file changes.")
	f.IntVar(&healthcheckPort, "healthcheck-port", envIntOr("APPGRAPH_HEALTHCHECK_PORT", 0), "Port for the HTTP health check server. 0 is disabled.")
	f.IntVar(&maxTasks, "max-tasks", envIntOr("APPGRAPH_MAX_TASKS", 0), "Upper bound of concurrent lightweight tasks. 0 uses the default.")
	return cmd
}
