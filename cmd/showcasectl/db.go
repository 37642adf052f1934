package main

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/yi-nology/showcase/biz/dal/model"
	"github.com/yi-nology/showcase/pkg/ui"
)

var resetConfirmed bool

var dbCmd = &cobra.Command{
	Use:   "db",
	Short: "Database maintenance",
}

var dbCompactCmd = &cobra.Command{
	Use:   "compact",
	Short: "Reclaim space left by deleted rows",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := showcase.Service.Compact(getContext(cmd)); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), ui.FormatSuccess("Database compacted"))
		return nil
	},
}

var dbStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the dialect and row count of every table",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		dialect, tables, err := showcase.Service.Status(getContext(cmd))
		if err != nil {
			return err
		}
		rows := make([][]string, 0, len(tables))
		for _, t := range tables {
			rows = append(rows, []string{t.Table, strconv.FormatInt(t.Rows, 10)})
		}
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, ui.FormatInfo("dialect: "+dialect))
		fmt.Fprint(out, ui.Table([]string{"TABLE", "ROWS"}, rows))
		return nil
	},
}

var dbMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the schema",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := model.Migrate(showcase.DB); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), ui.FormatSuccess("Schema is up to date"))
		return nil
	},
}

var dbResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Drop every table and recreate an empty schema",
	Long: `Drop every table and recreate an empty schema.

This permanently deletes all admins, uploads, comments and ratings.
Offloaded objects in storage are left in place.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if !resetConfirmed {
			return errors.New("refusing to reset without --yes")
		}
		if err := model.Reset(showcase.DB); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), ui.FormatWarning("Database reset"))
		return nil
	},
}

func init() {
	dbResetCmd.Flags().BoolVar(&resetConfirmed, "yes", false, "confirm the destructive reset")

	dbCmd.AddCommand(dbCompactCmd)
	dbCmd.AddCommand(dbStatusCmd)
	dbCmd.AddCommand(dbMigrateCmd)
	dbCmd.AddCommand(dbResetCmd)
}
