package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"os/exec"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/berrythewa/clipman/internal/config"
)

// newConfigCmd creates the config command
func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage Clipman configuration",
		Long: `Manage Clipman configuration:
  • Initialize configuration for first-time setup
  • Show current configuration
  • Edit configuration in your preferred editor
  • Reset configuration to defaults
  • Validate configuration`,
		// Config commands manage the file themselves and must not create it
		// as a side effect of loading.
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
	}

	cmd.AddCommand(newConfigInitCmd())
	cmd.AddCommand(newConfigShowCmd())
	cmd.AddCommand(newConfigPathCmd())
	cmd.AddCommand(newConfigEditCmd())
	cmd.AddCommand(newConfigResetCmd())
	cmd.AddCommand(newConfigValidateCmd())

	return cmd
}

// activeConfigPath honours --config before the default location.
func activeConfigPath() (string, error) {
	if configFile != "" {
		return configFile, nil
	}
	path, err := config.GetActiveConfigPath()
	if err != nil {
		return "", fmt.Errorf("failed to get active config path: %w", err)
	}
	return path, nil
}

func newConfigInitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize configuration for first-time setup",
		Long: `Initialize Clipman configuration with sensible defaults.
This creates the configuration directory structure and generates
a default configuration file.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			configPath, err := activeConfigPath()
			if err != nil {
				return err
			}
			if _, err := os.Stat(configPath); err == nil && !force {
				return fmt.Errorf("configuration already exists at %s\nUse --force to overwrite or 'clipman config show' to view current config", configPath)
			}

			c := config.DefaultConfig()
			if err := c.Save(configPath); err != nil {
				return fmt.Errorf("failed to save configuration: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "✓ Configuration initialized at: %s\n", configPath)
			fmt.Fprintf(out, "✓ Data directory: %s\n", c.SystemPaths.DataDir)
			fmt.Fprintf(out, "✓ History file: %s\n", c.StoragePath())
			fmt.Fprintln(out, "\nTo start the daemon, run: clipman daemon start")
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "force overwrite existing configuration")
	return cmd
}

func newConfigShowCmd() *cobra.Command {
	var outFormat string

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			configPath, err := activeConfigPath()
			if err != nil {
				return err
			}
			c, err := config.Load(configPath)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			if useJSON {
				outFormat = "json"
			}
			switch outFormat {
			case "json":
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(c)
			case "yaml":
				data, err := yaml.Marshal(c)
				if err != nil {
					return fmt.Errorf("failed to marshal config: %w", err)
				}
				fmt.Fprint(cmd.OutOrStdout(), string(data))
				return nil
			default:
				return fmt.Errorf("unsupported format: %s", outFormat)
			}
		},
	}

	cmd.Flags().StringVarP(&outFormat, "format", "f", "yaml", "output format (yaml or json)")
	return cmd
}

func newConfigPathCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Show configuration and data locations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			configPath, err := activeConfigPath()
			if err != nil {
				return err
			}
			paths, err := config.GetConfigPaths()
			if err != nil {
				return err
			}
			if useJSON {
				return printJSON(cmd.OutOrStdout(), map[string]string{
					"config":  configPath,
					"data":    paths.DataDir,
					"history": paths.HistoryFile,
					"db":      paths.DBFile,
					"logs":    paths.LogDir,
					"socket":  paths.SocketPath,
				})
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Config:  %s\n", configPath)
			fmt.Fprintf(out, "Data:    %s\n", paths.DataDir)
			fmt.Fprintf(out, "History: %s\n", paths.HistoryFile)
			fmt.Fprintf(out, "DB:      %s\n", paths.DBFile)
			fmt.Fprintf(out, "Logs:    %s\n", paths.LogDir)
			fmt.Fprintf(out, "Socket:  %s\n", paths.SocketPath)
			return nil
		},
	}
}

func newConfigEditCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "edit",
		Short: "Edit configuration in your preferred editor",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			configPath, err := activeConfigPath()
			if err != nil {
				return err
			}

			if _, err := os.Stat(configPath); os.IsNotExist(err) {
				if err := config.DefaultConfig().Save(configPath); err != nil {
					return fmt.Errorf("failed to create default config: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Created new configuration file with defaults")
			}

			editor := os.Getenv("EDITOR")
			if editor == "" {
				editor = "vi"
			}
			editorCmd := exec.Command(editor, configPath)
			editorCmd.Stdin = os.Stdin
			editorCmd.Stdout = os.Stdout
			editorCmd.Stderr = os.Stderr
			if err := editorCmd.Run(); err != nil {
				return fmt.Errorf("failed to open editor: %w", err)
			}

			if _, err := config.Load(configPath); err != nil {
				fmt.Fprintf(cmd.OutOrStdout(), "Warning: configuration validation failed: %v\n", err)
				fmt.Fprintln(cmd.OutOrStdout(), "The file has been saved, but the daemon will refuse to start with it.")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Configuration updated and validated successfully")
			return nil
		},
	}
}

func newConfigResetCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Reset configuration to defaults",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			configPath, err := activeConfigPath()
			if err != nil {
				return err
			}
			if _, err := os.Stat(configPath); err == nil && !force {
				return fmt.Errorf("config file exists, use --force to overwrite")
			}
			if err := config.DefaultConfig().Save(configPath); err != nil {
				return fmt.Errorf("failed to write default config: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Configuration reset to defaults")
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "force overwrite existing config")
	return cmd
}

func newConfigValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			configPath, err := activeConfigPath()
			if err != nil {
				return err
			}
			if _, err := os.Stat(configPath); err != nil {
				return fmt.Errorf("no configuration at %s: %w", configPath, err)
			}
			if _, err := config.Load(configPath); err != nil {
				return fmt.Errorf("configuration validation failed: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Configuration is valid")
			return nil
		},
	}
}
