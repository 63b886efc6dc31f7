package zone

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/paularlott/cli"

	"github.com/fabriclab/sanctl/internal/config"
	"github.com/fabriclab/sanctl/internal/fabric"
	"github.com/fabriclab/sanctl/pkg/mds"
)

// Commands returns the zoning commands
func Commands() []*cli.Command {
	return []*cli.Command{
		statusCommand(),
		getCommand(),
		createCommand(),
		deleteCommand(),
		addMembersCommand(),
		setModeCommand(),
		setDefaultZoneCommand(),
		setSmartZoningCommand(),
		clearLockCommand(),
	}
}

func vsanFlag() cli.Flag {
	return &cli.IntFlag{
		Name:     "vsan",
		Usage:    "VSAN the zone lives in",
		Required: true,
	}
}

func newZone(cmd *cli.Command, name string) (*mds.Zone, error) {
	sw, err := fabric.Connect(config.Load(config.FromCommand(cmd)))
	if err != nil {
		return nil, err
	}
	vsan := cmd.GetInt("vsan")
	if vsan <= 0 {
		return nil, fmt.Errorf("vsan must be a positive integer, got %d", vsan)
	}
	return mds.NewZone(sw, mds.NewVsan(sw, vsan), name), nil
}

func statusCommand() *cli.Command {
	return &cli.Command{
		Name:        "status",
		Usage:       "Show zoning status for a VSAN",
		Description: "Show zoning mode, default-zone policy, smart-zoning state and session lock",
		Flags:       append(config.GetFlags(), vsanFlag()),
		Run: func(ctx context.Context, cmd *cli.Command) error {
			zone, err := newZone(cmd, "")
			if err != nil {
				return err
			}
			st, err := zone.Status(ctx)
			if err != nil {
				return err
			}
			fmt.Printf("Mode:         %s\n", st.Mode)
			fmt.Printf("Default-zone: %s\n", st.DefaultZone)
			fmt.Printf("Smart-zoning: %s\n", st.SmartZoning)
			fmt.Printf("Session:      %s\n", st.Session)
			return nil
		},
	}
}

func getCommand() *cli.Command {
	return &cli.Command{
		Name:        "get",
		Usage:       "Get a zone",
		Description: "Show a zone and its members",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "name", Required: true},
		},
		Flags: append(config.GetFlags(), vsanFlag()),
		Run: func(ctx context.Context, cmd *cli.Command) error {
			name := cmd.GetStringArg("name")
			zone, err := newZone(cmd, name)
			if err != nil {
				return err
			}
			got, err := zone.Name(ctx)
			if err != nil {
				return err
			}
			if got == "" {
				return fmt.Errorf("zone %s not found in vsan %d", name, cmd.GetInt("vsan"))
			}
			members, err := zone.Members(ctx)
			if err != nil {
				return err
			}
			fmt.Printf("Zone: %s\n", got)
			if len(members) == 0 {
				fmt.Println("No members")
				return nil
			}
			for _, m := range members {
				fmt.Printf("  %s %s\n", m.Type, m.Value)
			}
			return nil
		},
	}
}

func createCommand() *cli.Command {
	return &cli.Command{
		Name:        "create",
		Usage:       "Create a zone",
		Description: "Create an empty zone in a VSAN",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "name", Required: true},
		},
		Flags: append(config.GetFlags(), vsanFlag()),
		Run: func(ctx context.Context, cmd *cli.Command) error {
			name := cmd.GetStringArg("name")
			zone, err := newZone(cmd, name)
			if err != nil {
				return err
			}
			if err := zone.Create(ctx); err != nil {
				return err
			}
			fmt.Printf("Zone created: %s\n", name)
			return nil
		},
	}
}

func deleteCommand() *cli.Command {
	return &cli.Command{
		Name:        "delete",
		Usage:       "Delete a zone",
		Description: "Delete a zone from a VSAN",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "name", Required: true},
		},
		Flags: append(config.GetFlags(), vsanFlag()),
		Run: func(ctx context.Context, cmd *cli.Command) error {
			name := cmd.GetStringArg("name")
			zone, err := newZone(cmd, name)
			if err != nil {
				return err
			}
			if err := zone.Delete(ctx); err != nil {
				return err
			}
			fmt.Printf("Zone deleted: %s\n", name)
			return nil
		},
	}
}

func addMembersCommand() *cli.Command {
	return &cli.Command{
		Name:        "add-members",
		Usage:       "Add members to a zone",
		Description: "Add pWWN or device-alias members to a zone. Members that look like pWWNs are added as pwwn members, everything else as device-alias members.",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "name", Required: true},
		},
		Flags: append(config.GetFlags(), vsanFlag(),
			&cli.StringFlag{
				Name:     "members",
				Usage:    "Comma-separated members to add",
				Required: true,
			},
		),
		Run: func(ctx context.Context, cmd *cli.Command) error {
			name := cmd.GetStringArg("name")
			members := parseList(cmd.GetString("members"))
			if len(members) == 0 {
				return fmt.Errorf("at least one member is required")
			}
			zone, err := newZone(cmd, name)
			if err != nil {
				return err
			}
			if err := zone.AddMembers(ctx, members); err != nil {
				return err
			}
			fmt.Printf("Added %d members to zone %s\n", len(members), name)
			return nil
		},
	}
}

func setModeCommand() *cli.Command {
	return &cli.Command{
		Name:        "set-mode",
		Usage:       "Set the zoning mode",
		Description: "Switch a VSAN between basic and enhanced zoning mode",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "mode", Required: true},
		},
		Flags: append(config.GetFlags(), vsanFlag()),
		Run: func(ctx context.Context, cmd *cli.Command) error {
			mode := cmd.GetStringArg("mode")
			zone, err := newZone(cmd, "")
			if err != nil {
				return err
			}
			if err := zone.SetMode(ctx, mode); err != nil {
				return err
			}
			fmt.Printf("Zoning mode set to %s\n", mode)
			return nil
		},
	}
}

func setDefaultZoneCommand() *cli.Command {
	return &cli.Command{
		Name:        "set-default-zone",
		Usage:       "Set the default-zone policy",
		Description: "Set the default-zone policy of a VSAN to permit or deny",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "policy", Required: true},
		},
		Flags: append(config.GetFlags(), vsanFlag()),
		Run: func(ctx context.Context, cmd *cli.Command) error {
			policy := cmd.GetStringArg("policy")
			zone, err := newZone(cmd, "")
			if err != nil {
				return err
			}
			if err := zone.SetDefaultZone(ctx, policy); err != nil {
				return err
			}
			fmt.Printf("Default-zone policy set to %s\n", policy)
			return nil
		},
	}
}

func setSmartZoningCommand() *cli.Command {
	return &cli.Command{
		Name:        "set-smart-zoning",
		Usage:       "Enable or disable smart zoning",
		Description: "Turn smart zoning on or off for a VSAN",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "state", Required: true},
		},
		Flags: append(config.GetFlags(), vsanFlag()),
		Run: func(ctx context.Context, cmd *cli.Command) error {
			state := cmd.GetStringArg("state")
			enable, err := parseOnOff(state)
			if err != nil {
				return err
			}
			zone, err := newZone(cmd, "")
			if err != nil {
				return err
			}
			if err := zone.SetSmartZone(ctx, enable); err != nil {
				return err
			}
			fmt.Printf("Smart zoning set to %s\n", state)
			return nil
		},
	}
}

func clearLockCommand() *cli.Command {
	return &cli.Command{
		Name:        "clear-lock",
		Usage:       "Clear the zone session lock",
		Description: "Clear a stuck zone session lock on a VSAN",
		Flags:       append(config.GetFlags(), vsanFlag()),
		Run: func(ctx context.Context, cmd *cli.Command) error {
			zone, err := newZone(cmd, "")
			if err != nil {
				return err
			}
			if err := zone.ClearLock(ctx); err != nil {
				return err
			}
			fmt.Println("Zone lock cleared")
			return nil
		},
	}
}

func parseOnOff(state string) (bool, error) {
	switch state {
	case "on", "enable", "enabled":
		return true, nil
	case "off", "disable", "disabled":
		return false, nil
	}
	if b, err := strconv.ParseBool(state); err == nil {
		return b, nil
	}
	return false, fmt.Errorf("invalid state %q, use on or off", state)
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
