package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"uvabs/internal/store"
)

func newReportCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Show the upload audit log",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			st, err := store.Open(cfg)
			if err != nil {
				return fmt.Errorf("open database: %w", err)
			}
			defer st.Close()

			entries, err := st.UploadLog(cmd.Context())
			if err != nil {
				return fmt.Errorf("read upload log: %w", err)
			}
			if limit > 0 && len(entries) > limit {
				entries = entries[:limit]
			}

			out := cmd.OutOrStdout()
			if len(entries) == 0 {
				fmt.Fprintln(out, "No uploads recorded")
				return nil
			}

			headers := []string{"ID", "Labware ID", "Sample", "Blank", "Dilution", "Cuvette", "Uploaded (UTC)"}
			aligns := []columnAlignment{alignRight, alignLeft, alignRight, alignLeft, alignRight, alignRight, alignLeft}
			rows := make([][]string, 0, len(entries))
			for _, entry := range entries {
				rows = append(rows, []string{
					strconv.FormatInt(entry.ID, 10),
					entry.LabwareTextID,
					strconv.FormatInt(entry.WaterSampleID, 10),
					entry.BlankFile,
					strconv.Itoa(entry.Dilution),
					fmt.Sprintf("%d cm", entry.CuvetteLenCM),
					entry.UploadedAt.UTC().Format(time.RFC3339),
				})
			}
			fmt.Fprintln(out, renderTable(headers, rows, aligns))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Show at most this many entries (0 shows all)")
	return cmd
}
