package health

import (
	"context"
	"fmt"

	"github.com/paularlott/cli"

	"github.com/fabriclab/sanctl/internal/config"
	probe "github.com/fabriclab/sanctl/internal/health"
)

// Command returns the SNMP health probe command
func Command() *cli.Command {
	return &cli.Command{
		Name:        "health",
		Usage:       "Probe switch health over SNMP",
		Description: "Check switch reachability and report system name, description and uptime",
		Flags: append(config.GetFlags(),
			&cli.StringFlag{
				Name:    "community",
				Usage:   "SNMP community",
				EnvVars: []string{"SANCTL_SNMP_COMMUNITY"},
			},
		),
		Run: func(ctx context.Context, cmd *cli.Command) error {
			opts := config.FromCommand(cmd)
			opts.SNMPCommunity = cmd.GetString("community")
			cfg := config.Load(opts)
			if cfg.SwitchAddr == "" {
				return fmt.Errorf("switch address is required, pass --switch or set SANCTL_SWITCH_ADDR")
			}

			st := probe.NewProber(cfg.SwitchAddr, cfg.SNMPCommunity, cfg.Timeout).Probe()
			if !st.Reachable {
				return fmt.Errorf("switch %s unreachable over SNMP: %s", cfg.SwitchAddr, st.Error)
			}

			fmt.Printf("Switch:      %s\n", cfg.SwitchAddr)
			fmt.Printf("Name:        %s\n", st.SysName)
			fmt.Printf("Description: %s\n", st.SysDescr)
			fmt.Printf("Uptime:      %s\n", st.Uptime)
			return nil
		},
	}
}
