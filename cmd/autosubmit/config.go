// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"github.com/autosubmit/autosubmit/internal/config"
	"github.com/autosubmit/autosubmit/internal/issue"

	"github.com/spf13/cobra"
)

func newConfigCommand(app *App, flags *runFlags) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage autosubmit configuration",
		Long: `Inspect and create the autosubmit configuration file.

The file is written in CUE and read from, in order: --config, the user
config directory and the current directory. AUTOSUBMIT_* environment
variables override file values.`,
	}
	configCmd.AddCommand(newConfigShowCommand(app, flags))
	configCmd.AddCommand(newConfigPathCommand(app, flags))
	configCmd.AddCommand(newConfigInitCommand(app))
	return configCmd
}

func newConfigShowCommand(app *App, flags *runFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			loaded, err := app.Config.Load(cmd.Context(), config.LoadOptions{ConfigFilePath: flags.configFile})
			if err != nil {
				return err
			}
			source := "built-in defaults"
			if loaded.Path != "" {
				source = loaded.Path
			}
			fmt.Fprintln(app.stderr, SubtitleStyle.Render("# source: ")+KeyStyle.Render(source))
			fmt.Fprint(app.stdout, config.GenerateCUE(loaded.Config))
			return nil
		},
	}
}

func newConfigPathCommand(app *App, flags *runFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the config file that would be loaded",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			path, err := config.ResolvePath(config.LoadOptions{ConfigFilePath: flags.configFile})
			if err != nil {
				return issue.WrapWithOperation(err, "resolve config path")
			}
			if path == "" {
				dir, dirErr := config.ConfigDir()
				if dirErr != nil {
					return issue.WrapWithOperation(dirErr, "resolve config path")
				}
				fmt.Fprintln(app.stderr, WarningStyle.Render("no config file found; defaults apply"))
				fmt.Fprintln(app.stderr, SubtitleStyle.Render("expected location: ")+KeyStyle.Render(dir))
				return nil
			}
			fmt.Fprintln(app.stdout, path)
			return nil
		},
	}
}

func newConfigInitCommand(app *App) *cobra.Command {
	var (
		dir   string
		force bool
	)
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default configuration file",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			path, created, err := config.CreateDefaultConfig(dir, force)
			if err != nil {
				return issue.NewErrorContext().
					WithOperation("create config file").
					WithResource(dir).
					WithSuggestion("Check that the directory is writable").
					WithIssue(issue.PermissionDeniedId).
					Wrap(err).
					BuildError()
			}
			if !created {
				fmt.Fprintln(app.stdout, WarningStyle.Render("config file already exists: ")+KeyStyle.Render(path))
				fmt.Fprintln(app.stdout, SubtitleStyle.Render("use --force to overwrite it"))
				return nil
			}
			fmt.Fprintln(app.stdout, SuccessStyle.Render("created ")+KeyStyle.Render(path))
			return nil
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "", "directory to write config.cue into (default is the user config directory)")
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing config file")
	return cmd
}
