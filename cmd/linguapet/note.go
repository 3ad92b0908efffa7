package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hrygo/linguapet/internal/version"
)

var noteCmd = &cobra.Command{
	Use:   "note [text]",
	Short: "Append a note, or list notes when no text is given",
	RunE: func(cmd *cobra.Command, args []string) error {
		instanceProfile, err := loadProfile()
		if err != nil {
			return err
		}
		app, err := newApp(cmd.Context(), instanceProfile)
		if err != nil {
			printDatabaseError(err, instanceProfile)
			return err
		}
		defer app.Close()

		ctx := cmd.Context()
		if len(args) > 0 {
			if err := app.engine.AppendNote(ctx, strings.Join(args, " ")); err != nil {
				return err
			}
		}
		for i, note := range app.engine.Notes(ctx) {
			fmt.Fprintf(cmd.OutOrStdout(), "%d. %s\n", i+1, note)
		}
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print build information",
	Run: func(cmd *cobra.Command, _ []string) {
		fmt.Fprintln(cmd.OutOrStdout(), version.StringFull())
	},
}
