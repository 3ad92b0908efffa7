package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/hrygo/linguapet/store"
)

var dumpCmd = &cobra.Command{
	Use:   "dump",
	Short: "Print every persisted key with its last update time and raw value",
	RunE: func(cmd *cobra.Command, _ []string) error {
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

		return dumpState(cmd.Context(), app.store, cmd.OutOrStdout())
	},
}

// dumpState writes one tab-separated line per key: key, updated time, value.
func dumpState(ctx context.Context, s *store.Store, w io.Writer) error {
	list, err := s.List(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to list stored state")
	}
	for _, kv := range list {
		updated := time.Unix(kv.UpdatedTs, 0).UTC().Format(time.RFC3339)
		if _, err := fmt.Fprintf(w, "%s\t%s\t%s\n", kv.Key, updated, kv.Value); err != nil {
			return err
		}
	}
	return nil
}
