package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/xela07ax/emergency-console/internal/console/service"
	"github.com/xela07ax/emergency-console/internal/engine"
)

func newSnapshotCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "snapshot",
		Short: "Fetch stats once and print the presented dashboard",
		Long:  "Performs a single poll and prints the same screen the dashboard API would return.",
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := buildDeps(flags)
			if err != nil {
				return err
			}
			defer d.logger.Sync()

			stats, fetchErr := d.client.Fetch(cmd.Context())
			st := engine.PollState{Err: fetchErr, Seq: 1}
			if fetchErr == nil {
				st.Stats = &stats
				st.LastUpdate = time.Now()
			}
			return printJSON(cmd.OutOrStdout(), service.BuildScreen(st))
		},
	}
}

func newHistoryCmd(flags *rootFlags) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Print the most recent classified calls",
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := buildDeps(flags)
			if err != nil {
				return err
			}
			defer d.logger.Sync()

			return printJSON(cmd.OutOrStdout(), d.client.History(cmd.Context(), limit))
		},
	}
	cmd.Flags().IntVar(&limit, "limit", engine.DefaultHistoryLimit, "number of calls to fetch")
	return cmd
}

func newClassifyCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "classify <transcript...>",
		Short: "Classify an emergency transcript",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text := strings.TrimSpace(strings.Join(args, " "))
			if text == "" {
				return errors.New("transcript is empty")
			}

			d, err := buildDeps(flags)
			if err != nil {
				return err
			}
			defer d.logger.Sync()

			resp, err := d.client.Classify(cmd.Context(), text)
			if err != nil {
				return fmt.Errorf("classify: %w", err)
			}
			return printJSON(cmd.OutOrStdout(), resp)
		},
	}
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
