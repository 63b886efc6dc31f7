package main

import (
	"context"
	"os"

	"github.com/paularlott/cli"
	"github.com/paularlott/cli/env"

	"github.com/fabriclab/sanctl/cmd/alias"
	"github.com/fabriclab/sanctl/cmd/audit"
	"github.com/fabriclab/sanctl/cmd/health"
	"github.com/fabriclab/sanctl/cmd/intf"
	"github.com/fabriclab/sanctl/cmd/server"
	"github.com/fabriclab/sanctl/cmd/token"
	"github.com/fabriclab/sanctl/cmd/zone"
	"github.com/fabriclab/sanctl/internal/log"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	// Load .env file if it exists
	env.Load()

	// Initialize structured logging
	log.Configure("info", "console")

	rootCmd := &cli.Command{
		Name:        "sanctl",
		Version:     version,
		Usage:       "Cisco MDS SAN fabric automation",
		Description: "Manage device-aliases, zones and FC interfaces on Cisco MDS switches over NX-API, with a REST API, MCP server and fabric monitor",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:         "log-level",
				Usage:        "Log level (trace, debug, info, warn, error)",
				DefaultValue: "info",
				EnvVars:      []string{"SANCTL_LOG_LEVEL"},
				Global:       true,
			},
			&cli.StringFlag{
				Name:         "log-format",
				Usage:        "Log format (console, json)",
				DefaultValue: "console",
				EnvVars:      []string{"SANCTL_LOG_FORMAT"},
				Global:       true,
			},
		},
		PreRun: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			logLevel := cmd.GetString("log-level")
			logFormat := cmd.GetString("log-format")
			log.Configure(logLevel, logFormat)
			return ctx, nil
		},
		Commands: []*cli.Command{
			server.Command(),
			token.Command(),
			{
				Name:        "alias",
				Usage:       "Device-alias management commands",
				Description: "Manage the fabric device-alias database",
				Commands:    alias.Commands(),
			},
			{
				Name:        "zone",
				Usage:       "Zoning commands",
				Description: "Manage zones and zoning policy per VSAN",
				Commands:    zone.Commands(),
			},
			{
				Name:        "intf",
				Usage:       "Interface commands",
				Description: "Manage FC interfaces and port-channels",
				Commands:    intf.Commands(),
			},
			{
				Name:        "audit",
				Usage:       "Audit trail commands",
				Description: "Inspect recorded switch commands and fabric snapshots",
				Commands:    audit.Commands(),
			},
			health.Command(),
		},
	}

	if err := rootCmd.Execute(context.Background()); err != nil {
		log.Error("Command execution failed", "error", err)
		os.Exit(1)
	}
}
