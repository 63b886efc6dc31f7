package config

import (
	"time"

	"github.com/paularlott/cli"
)

// GetFlags returns the switch connection flags shared by every command that
// talks to a fabric.
func GetFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "switch",
			Aliases: []string{"s"},
			Usage:   "Switch management address",
			EnvVars: []string{"SANCTL_SWITCH_ADDR"},
		},
		&cli.StringFlag{
			Name:    "username",
			Aliases: []string{"u"},
			Usage:   "Switch username",
			EnvVars: []string{"SANCTL_USERNAME"},
		},
		&cli.StringFlag{
			Name:    "password",
			Aliases: []string{"p"},
			Usage:   "Switch password",
			EnvVars: []string{"SANCTL_PASSWORD"},
		},
		&cli.StringFlag{
			Name:    "scheme",
			Usage:   "Management API scheme (http or https)",
			EnvVars: []string{"SANCTL_SWITCH_SCHEME"},
		},
		&cli.IntFlag{
			Name:    "port",
			Usage:   "Management API port",
			EnvVars: []string{"SANCTL_SWITCH_PORT"},
		},
		&cli.BoolFlag{
			Name:    "insecure",
			Usage:   "Skip TLS certificate verification",
			EnvVars: []string{"SANCTL_INSECURE"},
		},
		&cli.StringFlag{
			Name:    "timeout",
			Usage:   "Request timeout, for example 30s",
			EnvVars: []string{"SANCTL_TIMEOUT"},
		},
		&cli.StringFlag{
			Name:    "transport",
			Usage:   "Switch transport implementation",
			EnvVars: []string{"SANCTL_TRANSPORT"},
		},
	}
}

// FromCommand builds a Config override from the connection flags so it can
// be passed to Load.
func FromCommand(cmd *cli.Command) *Config {
	opts := &Config{
		SwitchAddr:   cmd.GetString("switch"),
		Username:     cmd.GetString("username"),
		Password:     cmd.GetString("password"),
		SwitchScheme: cmd.GetString("scheme"),
		SwitchPort:   cmd.GetInt("port"),
		Insecure:     cmd.GetBool("insecure"),
		Transport:    cmd.GetString("transport"),
	}
	if v := cmd.GetString("timeout"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			opts.Timeout = d
		}
	}
	return opts
}
