package mds

import (
	"context"
	"strconv"
	"strings"

	"github.com/fabriclab/sanctl/internal/log"
)

// Port-channel channel modes.
const (
	ChannelModeActive = "active"
	ChannelModeOn     = "on"
)

// PortChannel manages one FC port-channel. It reuses the interface
// manager for the attributes a port-channel shares with a plain FC port
// and adds membership and channel-mode handling.
type PortChannel struct {
	*Fc
	id int
}

// NewPortChannel creates a manager for port-channel id.
func NewPortChannel(sw *Switch, id int) *PortChannel {
	return &PortChannel{
		Fc: NewFc(sw, "port-channel"+strconv.Itoa(id)),
		id: id,
	}
}

// ID returns the numeric port-channel id.
func (p *PortChannel) ID() int {
	return p.id
}

// Create defines the port-channel interface on the device.
func (p *PortChannel) Create(ctx context.Context) error {
	log.Debug("Creating port-channel", "id", p.id)
	cmd := "interface port-channel " + strconv.Itoa(p.id)
	msg, err := p.sw.Config(ctx, cmd)
	if err != nil {
		return err
	}
	if msg != "" {
		return &CLIError{Cmd: cmd, Msg: msg}
	}
	return nil
}

// Delete removes the port-channel interface.
func (p *PortChannel) Delete(ctx context.Context) error {
	log.Debug("Deleting port-channel", "id", p.id)
	cmd := "no interface port-channel " + strconv.Itoa(p.id)
	msg, err := p.sw.Config(ctx, cmd)
	if err != nil {
		return err
	}
	if msg != "" {
		return &CLIError{Cmd: cmd, Msg: msg}
	}
	return nil
}

// ChannelMode returns the configured channel mode, "active" or "on".
func (p *PortChannel) ChannelMode(ctx context.Context) (string, error) {
	out, err := p.sw.Show(ctx, "show port-channel database interface port-channel "+strconv.Itoa(p.id))
	if err != nil {
		return "", err
	}
	return out.Get("TABLE_port_channel_database.ROW_port_channel_database.protocol").String(), nil
}

// SetChannelMode sets the channel mode. mode is matched case-insensitively
// against "active" and "on"; the device only accepts an explicit command
// for active, on is its negation.
func (p *PortChannel) SetChannelMode(ctx context.Context, mode string) error {
	sub := "channel mode active"
	switch strings.ToLower(mode) {
	case ChannelModeActive:
	case ChannelModeOn:
		sub = "no " + sub
	default:
		return &InvalidModeError{Mode: mode}
	}
	return p.config(ctx, sub)
}

// Members returns the names of the FC interfaces bundled into this
// port-channel, in device order. A nil slice means no members.
func (p *PortChannel) Members(ctx context.Context) ([]*Fc, error) {
	out, err := p.sw.Show(ctx, "show port-channel database interface port-channel "+strconv.Itoa(p.id))
	if err != nil {
		return nil, err
	}
	rs := rows(out.Get("TABLE_port_channel_database.ROW_port_channel_database.TABLE_member_ports.ROW_member_ports"))
	if rs == nil {
		return nil, nil
	}
	members := make([]*Fc, 0, len(rs))
	for _, r := range rs {
		members = append(members, NewFc(p.sw, r.Get("port").String()))
	}
	return members, nil
}

// AddMembers bundles the given FC interfaces into the port-channel, one
// force-join command per interface. The batch stops at the first rejected
// interface.
func (p *PortChannel) AddMembers(ctx context.Context, members []*Fc) error {
	for _, m := range members {
		log.Debug("Adding port-channel member", "id", p.id, "interface", m.Name())
		cmd := "interface " + m.Name() + " ; channel-group " + strconv.Itoa(p.id) + " force"
		msg, err := p.sw.Config(ctx, cmd)
		if err != nil {
			return err
		}
		if msg != "" {
			return &CLIError{Cmd: cmd, Msg: msg}
		}
	}
	return nil
}
