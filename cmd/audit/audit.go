package audit

import (
	"context"
	"fmt"

	"github.com/paularlott/cli"

	"github.com/fabriclab/sanctl/internal/audit"
	"github.com/fabriclab/sanctl/internal/config"
)

// Commands returns the audit trail inspection commands
func Commands() []*cli.Command {
	return []*cli.Command{
		listCommand(),
		snapshotsCommand(),
	}
}

func dataDirFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "data-dir",
		Usage:   "Directory holding the audit database",
		EnvVars: []string{"SANCTL_DATA_DIR"},
	}
}

func limitFlag() *cli.IntFlag {
	return &cli.IntFlag{
		Name:         "limit",
		Usage:        "Maximum number of entries to show",
		DefaultValue: 50,
	}
}

func openStore(cmd *cli.Command) (*audit.SQLiteStore, error) {
	cfg := config.Load(&config.Config{DataDir: cmd.GetString("data-dir")})
	return audit.NewSQLiteStore(cfg.DataDir)
}

func listCommand() *cli.Command {
	return &cli.Command{
		Name:        "list",
		Usage:       "List recorded switch commands",
		Description: "Show the most recent commands sent to the switch, newest first",
		Flags:       []cli.Flag{dataDirFlag(), limitFlag()},
		Run: func(ctx context.Context, cmd *cli.Command) error {
			store, err := openStore(cmd)
			if err != nil {
				return fmt.Errorf("failed to open audit store: %w", err)
			}
			defer store.Close()

			records, err := store.ListCommands(cmd.GetInt("limit"))
			if err != nil {
				return fmt.Errorf("failed to list commands: %w", err)
			}
			if len(records) == 0 {
				fmt.Println("No commands recorded.")
				return nil
			}

			for _, r := range records {
				fmt.Printf("%s  %-7s %-7s %4dms  %s\n",
					r.Time.Format("2006-01-02 15:04:05"), r.Kind, r.Outcome, r.DurationMS, r.Command)
				if r.Response != "" {
					fmt.Printf("    %s\n", r.Response)
				}
			}
			return nil
		},
	}
}

func snapshotsCommand() *cli.Command {
	return &cli.Command{
		Name:        "snapshots",
		Usage:       "List recorded fabric state snapshots",
		Description: "Show periodic zoning and device-alias state captures, newest first",
		Flags: []cli.Flag{
			dataDirFlag(),
			limitFlag(),
			&cli.IntFlag{
				Name:  "vsan",
				Usage: "Only show snapshots for this VSAN (0 for all)",
			},
		},
		Run: func(ctx context.Context, cmd *cli.Command) error {
			store, err := openStore(cmd)
			if err != nil {
				return fmt.Errorf("failed to open audit store: %w", err)
			}
			defer store.Close()

			snaps, err := store.ListSnapshots(cmd.GetInt("vsan"), cmd.GetInt("limit"))
			if err != nil {
				return fmt.Errorf("failed to list snapshots: %w", err)
			}
			if len(snaps) == 0 {
				fmt.Println("No snapshots recorded.")
				return nil
			}

			for _, s := range snaps {
				fmt.Printf("%s  vsan %-4d mode=%s default-zone=%s smart-zoning=%s session=%s\n",
					s.Time.Format("2006-01-02 15:04:05"), s.Vsan, s.ZoneMode, s.DefaultZone, s.SmartZoning, s.Session)
				fmt.Printf("    alias: mode=%s distribution=%s locked-by=%s\n",
					s.AliasMode, s.AliasDistribution, s.AliasLockedBy)
			}
			return nil
		},
	}
}
