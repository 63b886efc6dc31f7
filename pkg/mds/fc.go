package mds

import (
	"context"

	"github.com/tidwall/gjson"

	"github.com/fabriclab/sanctl/internal/log"
)

// Interface status commands accepted by SetStatus.
const (
	Shutdown   = "shutdown"
	NoShutdown = "no shutdown"
)

// Fc manages one Fibre Channel interface, e.g. "fc1/4". Reads come from
// "show interface", writes are interface-scoped config commands. Every
// setter treats any device response as fatal; there is no benign
// allow-list on the interface path.
type Fc struct {
	sw   *Switch
	name string
}

// NewFc creates an interface manager for the named FC port.
func NewFc(sw *Switch, name string) *Fc {
	return &Fc{sw: sw, name: name}
}

// Name returns the interface name this manager is bound to.
func (f *Fc) Name() string {
	return f.name
}

// Description returns the configured port description.
func (f *Fc) Description(ctx context.Context) (string, error) {
	row, err := f.show(ctx)
	if err != nil {
		return "", err
	}
	return row.Get("description").String(), nil
}

// SetDescription sets the port description.
func (f *Fc) SetDescription(ctx context.Context, desc string) error {
	return f.config(ctx, "switchport description "+desc)
}

// Mode returns the operational port mode (E, F, auto, ...).
func (f *Fc) Mode(ctx context.Context) (string, error) {
	row, err := f.show(ctx)
	if err != nil {
		return "", err
	}
	return row.Get("oper_mode").String(), nil
}

// SetMode sets the administrative port mode.
func (f *Fc) SetMode(ctx context.Context, mode string) error {
	return f.config(ctx, "switchport mode "+mode)
}

// Speed returns the operational port speed.
func (f *Fc) Speed(ctx context.Context) (string, error) {
	row, err := f.show(ctx)
	if err != nil {
		return "", err
	}
	return row.Get("oper_speed").String(), nil
}

// SetSpeed sets the administrative port speed.
func (f *Fc) SetSpeed(ctx context.Context, speed string) error {
	return f.config(ctx, "switchport speed "+speed)
}

// Trunk returns the administrative trunk mode (on, off, auto).
func (f *Fc) Trunk(ctx context.Context) (string, error) {
	row, err := f.show(ctx)
	if err != nil {
		return "", err
	}
	return row.Get("admin_trunk_mode").String(), nil
}

// SetTrunk sets the trunk mode.
func (f *Fc) SetTrunk(ctx context.Context, mode string) error {
	return f.config(ctx, "switchport trunk mode "+mode)
}

// Status returns the interface state as reported by the device.
func (f *Fc) Status(ctx context.Context) (string, error) {
	row, err := f.show(ctx)
	if err != nil {
		return "", err
	}
	return row.Get("state").String(), nil
}

// SetStatus brings the interface up or down. status is the literal
// command, Shutdown or NoShutdown.
func (f *Fc) SetStatus(ctx context.Context, status string) error {
	return f.config(ctx, status)
}

// TransceiverDetails returns the raw transceiver record for the port.
func (f *Fc) TransceiverDetails(ctx context.Context) (gjson.Result, error) {
	out, err := f.sw.Show(ctx, "show interface "+f.name+" transceiver")
	if err != nil {
		return gjson.Result{}, err
	}
	return out.Get("TABLE_interface_trans.ROW_interface_trans"), nil
}

// Counters returns the raw traffic counter record for the port.
func (f *Fc) Counters(ctx context.Context) (gjson.Result, error) {
	out, err := f.sw.Show(ctx, "show interface "+f.name+" counters")
	if err != nil {
		return gjson.Result{}, err
	}
	return out.Get("TABLE_counters.ROW_counters"), nil
}

func (f *Fc) show(ctx context.Context) (gjson.Result, error) {
	out, err := f.sw.Show(ctx, "show interface "+f.name)
	if err != nil {
		return gjson.Result{}, err
	}
	return out.Get("TABLE_interface.ROW_interface"), nil
}

// config runs one interface-scoped configuration command.
func (f *Fc) config(ctx context.Context, sub string) error {
	cmd := "interface " + f.name + " ; " + sub
	log.Debug("Configuring interface", "interface", f.name, "cmd", cmd)
	msg, err := f.sw.Config(ctx, cmd)
	if err != nil {
		return err
	}
	if msg != "" {
		return &CLIError{Cmd: cmd, Msg: msg}
	}
	return nil
}
