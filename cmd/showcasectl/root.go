package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/yi-nology/showcase/biz/app"
	"github.com/yi-nology/showcase/pkg/config"
	"github.com/yi-nology/showcase/pkg/ui"
)

var (
	configPath string
	theme      string

	showcase *app.App
)

var rootCmd = &cobra.Command{
	Use:   "showcasectl",
	Short: "Administer a showcase portfolio installation",
	Long: ui.StyleTitle.Render("showcasectl") + " - portfolio administration\n\n" +
		"Creates admins, reads pending login codes and maintains the database\n" +
		"of a showcase server using the same config.yaml.",
	SilenceUsage:       true,
	SilenceErrors:      true,
	PersistentPreRunE:  initializeApp,
	PersistentPostRunE: closeApp,
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, ui.FormatError(err.Error()))
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "config.yaml", "path to config.yaml")
	rootCmd.PersistentFlags().StringVar(&theme, "theme", "auto", "color theme: auto, dark or light")

	rootCmd.AddCommand(adminCmd)
	rootCmd.AddCommand(dbCmd)
	rootCmd.AddCommand(assetsCmd)
	rootCmd.AddCommand(storylineCmd)
}

func initializeApp(cmd *cobra.Command, _ []string) error {
	ui.SetTheme(theme)

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	app.SetLogLevel(cfg.Log.Level)
	// Visitor emails are never validated from the CLI.
	cfg.Email.CheckMX = false

	a, err := app.Build(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	showcase = a
	return nil
}

func closeApp(*cobra.Command, []string) error {
	if showcase == nil {
		return nil
	}
	err := showcase.Close()
	showcase = nil
	return err
}

func getContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
