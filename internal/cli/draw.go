package cli

import (
	"encoding/json"
	"fmt"

	"github.com/specialistvlad/appgraph/internal/app"
	"github.com/spf13/cobra"
)

func newDrawCommand(flags *globalFlags, opts []app.Option) *cobra.Command {
	var (
		configPath string
		output     string
	)

	cmd := &cobra.Command{
		Use:   "draw [CONFIG_PATH]",
		Short: "Print the graph blueprint without initializing it",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if configPath == "" && len(args) > 0 {
				configPath = args[0]
			}
			if output != "yaml" && output != "json" {
				return usageError(fmt.Errorf("invalid output %q: must be 'yaml' or 'json'", output))
			}
			cfg, err := flags.config(app.Config{ConfigPath: configPath})
			if err != nil {
				return err
			}

			// Blueprint output goes to stdout; logs go to stderr.
			a := app.NewApp(cmd.ErrOrStderr(), cfg, opts...)
			d, err := a.Draw(cmd.Context())
			if err != nil {
				return &ExitError{Code: 1, Message: err.Error()}
			}

			desc := d.Describe()
			var out []byte
			if output == "json" {
				out, err = json.MarshalIndent(desc, "", "  ")
			} else {
				out, err = desc.YAML()
			}
			if err != nil {
				return &ExitError{Code: 1, Message: err.Error()}
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return err
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", envOr("APPGRAPH_CONFIG", ""), "Path to the HCL settings file.")
	cmd.Flags().StringVarP(&output, "output", "o", "yaml", "Output format. Options: 'yaml' or 'json'.")
	return cmd
}
