package alias

import (
	"context"
	"fmt"
	"sort"

	"github.com/paularlott/cli"

	"github.com/fabriclab/sanctl/internal/config"
	"github.com/fabriclab/sanctl/internal/fabric"
	"github.com/fabriclab/sanctl/pkg/mds"
)

// Commands returns the device-alias management commands
func Commands() []*cli.Command {
	return []*cli.Command{
		listCommand(),
		createCommand(),
		deleteCommand(),
		renameCommand(),
		statusCommand(),
		setModeCommand(),
		setDistributeCommand(),
		clearLockCommand(),
		clearDatabaseCommand(),
	}
}

func connect(cmd *cli.Command) (*mds.Switch, error) {
	return fabric.Connect(config.Load(config.FromCommand(cmd)))
}

func listCommand() *cli.Command {
	return &cli.Command{
		Name:        "list",
		Usage:       "List device-aliases",
		Description: "List all entries in the device-alias database",
		Flags:       config.GetFlags(),
		Run: func(ctx context.Context, cmd *cli.Command) error {
			sw, err := connect(cmd)
			if err != nil {
				return err
			}
			db, err := mds.NewDeviceAlias(sw).Database(ctx)
			if err != nil {
				return err
			}
			if len(db) == 0 {
				fmt.Println("No device-aliases defined")
				return nil
			}
			names := make([]string, 0, len(db))
			for name := range db {
				names = append(names, name)
			}
			sort.Strings(names)
			for _, name := range names {
				fmt.Printf("%s\t%s\n", name, db[name])
			}
			return nil
		},
	}
}

func createCommand() *cli.Command {
	return &cli.Command{
		Name:        "create",
		Usage:       "Create a device-alias",
		Description: "Create a device-alias mapping a name to a pWWN",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "name", Required: true},
			&cli.StringArg{Name: "pwwn", Required: true},
		},
		Flags: config.GetFlags(),
		Run: func(ctx context.Context, cmd *cli.Command) error {
			name := cmd.GetStringArg("name")
			pwwn := cmd.GetStringArg("pwwn")
			if !mds.IsWWN(pwwn) {
				return fmt.Errorf("%q is not a valid pwwn, expected eight colon separated hex octets", pwwn)
			}
			sw, err := connect(cmd)
			if err != nil {
				return err
			}
			if err := mds.NewDeviceAlias(sw).Create(ctx, []mds.AliasEntry{{Name: name, PWWN: pwwn}}); err != nil {
				return err
			}
			fmt.Printf("Device-alias created: %s -> %s\n", name, pwwn)
			return nil
		},
	}
}

func deleteCommand() *cli.Command {
	return &cli.Command{
		Name:        "delete",
		Usage:       "Delete a device-alias",
		Description: "Delete a device-alias from the fabric database",
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
			if err := mds.NewDeviceAlias(sw).Delete(ctx, name); err != nil {
				return err
			}
			fmt.Println("Device-alias deleted")
			return nil
		},
	}
}

func renameCommand() *cli.Command {
	return &cli.Command{
		Name:        "rename",
		Usage:       "Rename a device-alias",
		Description: "Rename a device-alias, keeping its pWWN mapping",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "name", Required: true},
			&cli.StringArg{Name: "new-name", Required: true},
		},
		Flags: config.GetFlags(),
		Run: func(ctx context.Context, cmd *cli.Command) error {
			name := cmd.GetStringArg("name")
			newName := cmd.GetStringArg("new-name")
			sw, err := connect(cmd)
			if err != nil {
				return err
			}
			if err := mds.NewDeviceAlias(sw).Rename(ctx, name, newName); err != nil {
				return err
			}
			fmt.Printf("Device-alias renamed: %s -> %s\n", name, newName)
			return nil
		},
	}
}

func statusCommand() *cli.Command {
	return &cli.Command{
		Name:        "status",
		Usage:       "Show device-alias status",
		Description: "Show database mode, fabric distribution and lock holder",
		Flags:       config.GetFlags(),
		Run: func(ctx context.Context, cmd *cli.Command) error {
			sw, err := connect(cmd)
			if err != nil {
				return err
			}
			facts, err := mds.NewDeviceAlias(sw).Facts(ctx)
			if err != nil {
				return err
			}
			fmt.Printf("Mode:         %s\n", facts.Mode)
			fmt.Printf("Distribution: %s\n", facts.Distribution)
			if facts.LockedBy != "" {
				fmt.Printf("Locked by:    %s\n", facts.LockedBy)
			} else {
				fmt.Println("Locked by:    nobody")
			}
			return nil
		},
	}
}

func setModeCommand() *cli.Command {
	return &cli.Command{
		Name:        "set-mode",
		Usage:       "Set the device-alias mode",
		Description: "Switch the device-alias database between basic and enhanced mode",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "mode", Required: true},
		},
		Flags: config.GetFlags(),
		Run: func(ctx context.Context, cmd *cli.Command) error {
			mode := cmd.GetStringArg("mode")
			sw, err := connect(cmd)
			if err != nil {
				return err
			}
			if err := mds.NewDeviceAlias(sw).SetMode(ctx, mode); err != nil {
				return err
			}
			fmt.Printf("Device-alias mode set to %s\n", mode)
			return nil
		},
	}
}

func setDistributeCommand() *cli.Command {
	return &cli.Command{
		Name:        "set-distribute",
		Usage:       "Enable or disable CFS distribution",
		Description: "Turn fabric-wide distribution of the device-alias database on or off",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "state", Required: true},
		},
		Flags: config.GetFlags(),
		Run: func(ctx context.Context, cmd *cli.Command) error {
			state := cmd.GetStringArg("state")
			var enable bool
			switch state {
			case "on", "enable", "enabled", "true":
				enable = true
			case "off", "disable", "disabled", "false":
				enable = false
			default:
				return fmt.Errorf("invalid state %q, use on or off", state)
			}
			sw, err := connect(cmd)
			if err != nil {
				return err
			}
			if err := mds.NewDeviceAlias(sw).SetDistribute(ctx, enable); err != nil {
				return err
			}
			fmt.Printf("Device-alias distribution set to %s\n", state)
			return nil
		},
	}
}

func clearLockCommand() *cli.Command {
	return &cli.Command{
		Name:        "clear-lock",
		Usage:       "Clear the device-alias CFS lock",
		Description: "Clear a stuck device-alias session lock",
		Flags:       config.GetFlags(),
		Run: func(ctx context.Context, cmd *cli.Command) error {
			sw, err := connect(cmd)
			if err != nil {
				return err
			}
			if err := mds.NewDeviceAlias(sw).ClearLock(ctx); err != nil {
				return err
			}
			fmt.Println("Device-alias lock cleared")
			return nil
		},
	}
}

func clearDatabaseCommand() *cli.Command {
	return &cli.Command{
		Name:        "clear-database",
		Usage:       "Clear the device-alias database",
		Description: "Remove every entry from the device-alias database",
		Flags: append(config.GetFlags(),
			&cli.BoolFlag{
				Name:  "yes",
				Usage: "Confirm clearing the database",
			},
		),
		Run: func(ctx context.Context, cmd *cli.Command) error {
			if !cmd.GetBool("yes") {
				return fmt.Errorf("clearing the database removes every alias, re-run with --yes to confirm")
			}
			sw, err := connect(cmd)
			if err != nil {
				return err
			}
			if err := mds.NewDeviceAlias(sw).ClearDatabase(ctx); err != nil {
				return err
			}
			fmt.Println("Device-alias database cleared")
			return nil
		},
	}
}
