package intf

import (
	"context"
	"fmt"
	"strings"

	"github.com/paularlott/cli"

	"github.com/fabriclab/sanctl/internal/config"
	"github.com/fabriclab/sanctl/internal/fabric"
	"github.com/fabriclab/sanctl/pkg/mds"
)

// Commands returns the interface management commands
func Commands() []*cli.Command {
	return []*cli.Command{
		showCommand(),
		setCommand(),
		portChannelCommand(),
	}
}

func connect(cmd *cli.Command) (*mds.Switch, error) {
	return fabric.Connect(config.Load(config.FromCommand(cmd)))
}

func showCommand() *cli.Command {
	return &cli.Command{
		Name:        "show",
		Usage:       "Show an FC interface",
		Description: "Show description, mode, speed, trunk mode and status of an FC interface",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "name", Required: true},
		},
		Flags: config.GetFlags(),
		Run: func(ctx context.Context, cmd *cli.Command) error {
			name := cmd.GetStringArg("name")
			sw, err := connect(cmd)
			if err != nil {
				return err
			}
			fc := mds.NewFc(sw, name)

			desc, err := fc.Description(ctx)
			if err != nil {
				return err
			}
			mode, err := fc.Mode(ctx)
			if err != nil {
				return err
			}
			speed, err := fc.Speed(ctx)
			if err != nil {
				return err
			}
			trunk, err := fc.Trunk(ctx)
			if err != nil {
				return err
			}
			status, err := fc.Status(ctx)
			if err != nil {
				return err
			}

			fmt.Printf("Interface:   %s\n", fc.Name())
			fmt.Printf("Description: %s\n", desc)
			fmt.Printf("Mode:        %s\n", mode)
			fmt.Printf("Speed:       %s\n", speed)
			fmt.Printf("Trunk:       %s\n", trunk)
			fmt.Printf("Status:      %s\n", status)
			return nil
		},
	}
}

func setCommand() *cli.Command {
	return &cli.Command{
		Name:        "set",
		Usage:       "Configure an FC interface",
		Description: "Set description, mode, speed, trunk mode or admin status on an FC interface",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "name", Required: true},
		},
		Flags: append(config.GetFlags(),
			&cli.StringFlag{Name: "description", Usage: "Interface description"},
			&cli.StringFlag{Name: "mode", Usage: "Port mode (e.g., F, E, auto)"},
			&cli.StringFlag{Name: "speed", Usage: "Port speed (e.g., 8000, 16000, auto)"},
			&cli.StringFlag{Name: "trunk", Usage: "Trunk mode (on, off, auto)"},
			&cli.StringFlag{Name: "status", Usage: "Admin status (shutdown or \"no shutdown\")"},
		),
		Run: func(ctx context.Context, cmd *cli.Command) error {
			name := cmd.GetStringArg("name")
			sw, err := connect(cmd)
			if err != nil {
				return err
			}
			fc := mds.NewFc(sw, name)

			changed := false
			if v := cmd.GetString("description"); v != "" {
				if err := fc.SetDescription(ctx, v); err != nil {
					return err
				}
				changed = true
			}
			if v := cmd.GetString("mode"); v != "" {
				if err := fc.SetMode(ctx, v); err != nil {
					return err
				}
				changed = true
			}
			if v := cmd.GetString("speed"); v != "" {
				if err := fc.SetSpeed(ctx, v); err != nil {
					return err
				}
				changed = true
			}
			if v := cmd.GetString("trunk"); v != "" {
				if err := fc.SetTrunk(ctx, v); err != nil {
					return err
				}
				changed = true
			}
			if v := cmd.GetString("status"); v != "" {
				if err := fc.SetStatus(ctx, v); err != nil {
					return err
				}
				changed = true
			}
			if !changed {
				return fmt.Errorf("nothing to set, pass at least one of --description, --mode, --speed, --trunk, --status")
			}
			fmt.Printf("Interface %s updated\n", fc.Name())
			return nil
		},
	}
}

func portChannelCommand() *cli.Command {
	idFlag := &cli.IntFlag{
		Name:     "id",
		Usage:    "Port-channel number",
		Required: true,
	}

	return &cli.Command{
		Name:        "port-channel",
		Usage:       "Port-channel management",
		Description: "Create, delete and manage port-channels",
		Commands: []*cli.Command{
			{
				Name:        "create",
				Usage:       "Create a port-channel",
				Description: "Create a port-channel interface",
				Flags:       append(config.GetFlags(), idFlag),
				Run: func(ctx context.Context, cmd *cli.Command) error {
					sw, err := connect(cmd)
					if err != nil {
						return err
					}
					pc := mds.NewPortChannel(sw, cmd.GetInt("id"))
					if err := pc.Create(ctx); err != nil {
						return err
					}
					fmt.Printf("Port-channel %d created\n", pc.ID())
					return nil
				},
			},
			{
				Name:        "delete",
				Usage:       "Delete a port-channel",
				Description: "Delete a port-channel interface",
				Flags:       append(config.GetFlags(), idFlag),
				Run: func(ctx context.Context, cmd *cli.Command) error {
					sw, err := connect(cmd)
					if err != nil {
						return err
					}
					pc := mds.NewPortChannel(sw, cmd.GetInt("id"))
					if err := pc.Delete(ctx); err != nil {
						return err
					}
					fmt.Printf("Port-channel %d deleted\n", pc.ID())
					return nil
				},
			},
			{
				Name:        "show",
				Usage:       "Show a port-channel",
				Description: "Show channel mode and member interfaces of a port-channel",
				Flags:       append(config.GetFlags(), idFlag),
				Run: func(ctx context.Context, cmd *cli.Command) error {
					sw, err := connect(cmd)
					if err != nil {
						return err
					}
					pc := mds.NewPortChannel(sw, cmd.GetInt("id"))
					mode, err := pc.ChannelMode(ctx)
					if err != nil {
						return err
					}
					members, err := pc.Members(ctx)
					if err != nil {
						return err
					}
					fmt.Printf("Port-channel: %d\n", pc.ID())
					fmt.Printf("Channel mode: %s\n", mode)
					if len(members) == 0 {
						fmt.Println("No members")
						return nil
					}
					fmt.Println("Members:")
					for _, m := range members {
						fmt.Printf("  %s\n", m.Name())
					}
					return nil
				},
			},
			{
				Name:        "add-members",
				Usage:       "Add interfaces to a port-channel",
				Description: "Force FC interfaces into a port-channel",
				Flags: append(config.GetFlags(), idFlag,
					&cli.StringFlag{
						Name:     "interfaces",
						Usage:    "Comma-separated FC interfaces (e.g., fc1/1,fc1/2)",
						Required: true,
					},
				),
				Run: func(ctx context.Context, cmd *cli.Command) error {
					names := parseList(cmd.GetString("interfaces"))
					if len(names) == 0 {
						return fmt.Errorf("at least one interface is required")
					}
					sw, err := connect(cmd)
					if err != nil {
						return err
					}
					pc := mds.NewPortChannel(sw, cmd.GetInt("id"))
					members := make([]*mds.Fc, 0, len(names))
					for _, n := range names {
						members = append(members, mds.NewFc(sw, n))
					}
					if err := pc.AddMembers(ctx, members); err != nil {
						return err
					}
					fmt.Printf("Added %d interfaces to port-channel %d\n", len(members), pc.ID())
					return nil
				},
			},
		},
	}
}

func parseList(s string) []string {
	var result []string
	for _, item := range strings.Split(s, ",") {
		item = strings.TrimSpace(item)
		if item != "" {
			result = append(result, item)
		}
	}
	return result
}
