package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

// newConfigCommand creates the config subcommand group
func newConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect or create the configuration file",
	}

	initCmd := &cobra.Command{
		Use:   "init [path]",
		Short: "Write the default configuration",
		Long:  "Write the default configuration to path, or to the user config directory when no path is given.",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runConfigInitCommand,
	}
	initCmd.Flags().Bool("force", false, "Overwrite an existing file")

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration after overrides",
		Args:  cobra.NoArgs,
		RunE:  runConfigShowCommand,
	}

	cmd.AddCommand(initCmd, showCmd)
	return cmd
}

func runConfigInitCommand(cmd *cobra.Command, args []string) error {
	cli := cliFromContext(cmd.Context())
	if cli == nil {
		return fmt.Errorf("CLI instance not found in context")
	}

	target := cli.configManager.UserConfigPath()
	if len(args) == 1 {
		target = args[0]
	}
	force, _ := cmd.Flags().GetBool("force")

	if err := cli.configManager.InitConfigFile(target, force); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", target)
	return nil
}

func runConfigShowCommand(cmd *cobra.Command, args []string) error {
	cli := cliFromContext(cmd.Context())
	if cli == nil {
		return fmt.Errorf("CLI instance not found in context")
	}

	cfg, err := loadAndValidateConfig(cmd, cli)
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return nil
}
