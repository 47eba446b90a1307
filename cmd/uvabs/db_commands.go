package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"uvabs/internal/store"
)

func newDBCommand(ctx *commandContext) *cobra.Command {
	dbCmd := &cobra.Command{
		Use:   "db",
		Short: "Database utilities",
	}

	dbCmd.AddCommand(newDBHealthCommand(ctx))
	dbCmd.AddCommand(newDBAddMappingCommand(ctx))

	return dbCmd
}

func newDBHealthCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check the spectra database",
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

			health, err := st.CheckHealth(cmd.Context())
			if err != nil {
				return fmt.Errorf("check database health: %w", err)
			}

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			fmt.Fprintf(out, "Database: %s\n", health.DBPath)
			fmt.Fprintln(out, renderStatusLine("Exists", boolKind(health.DatabaseExists), yesNo(health.DatabaseExists), colorize))
			fmt.Fprintln(out, renderStatusLine("Readable", boolKind(health.DatabaseReadable), yesNo(health.DatabaseReadable), colorize))
			fmt.Fprintln(out, renderStatusLine("Integrity", boolKind(health.IntegrityCheck), yesNo(health.IntegrityCheck), colorize))
			if len(health.MissingTables) > 0 {
				fmt.Fprintln(out, renderStatusLine("Tables", statusError,
					"missing "+strings.Join(health.MissingTables, ", "), colorize))
			} else {
				fmt.Fprintln(out, renderStatusLine("Tables", statusOK,
					strings.Join(health.TablesPresent, ", "), colorize))
			}
			fmt.Fprintln(out, renderStatusLine("Spectra rows", statusInfo, strconv.Itoa(health.SpectraRows), colorize))
			fmt.Fprintln(out, renderStatusLine("Upload log rows", statusInfo, strconv.Itoa(health.UploadLogRows), colorize))
			if health.Error != "" {
				fmt.Fprintln(out, renderStatusLine("Error", statusError, health.Error, colorize))
				return fmt.Errorf("database unhealthy: %s", health.Error)
			}
			return nil
		},
	}
}

func newDBAddMappingCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "add-mapping <labware-id> <water-sample-id>",
		Short: "Map a labware text id to a water sample id",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			labwareID := strings.TrimSpace(args[0])
			if labwareID == "" {
				return fmt.Errorf("labware id must not be empty")
			}
			waterSampleID, err := strconv.ParseInt(args[1], 10, 64)
			if err != nil {
				return fmt.Errorf("parse water sample id %q: %w", args[1], err)
			}

			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			st, err := store.Open(cfg)
			if err != nil {
				return fmt.Errorf("open database: %w", err)
			}
			defer st.Close()

			if err := st.AddLabwareMapping(cmd.Context(), labwareID, waterSampleID); err != nil {
				return fmt.Errorf("add mapping: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Mapped %s to water sample %d\n", labwareID, waterSampleID)
			return nil
		},
	}
}

func boolKind(ok bool) statusKind {
	if ok {
		return statusOK
	}
	return statusError
}
