package mds

import (
	"context"

	"github.com/tidwall/gjson"
)

// Mode and policy values understood by the switch.
const (
	ModeBasic    = "basic"
	ModeEnhanced = "enhanced"

	PolicyPermit = "permit"
	PolicyDeny   = "deny"
)

// Transport is the boundary to the switch management API. Show returns the
// structured body of a show command (the zero gjson.Result when the device
// returned no data). Config submits a configuration command string and
// returns the device's response message; an empty message means the command
// was accepted cleanly. The error return is transport-level only: HTTP or
// session failures, never device command rejections.
type Transport interface {
	Show(ctx context.Context, cmd string) (gjson.Result, error)
	Config(ctx context.Context, cmd string) (string, error)
}

// Switch represents one MDS switch reachable through a Transport. It holds
// no device state; every read goes back to the device.
type Switch struct {
	t Transport
}

// NewSwitch wraps a transport.
func NewSwitch(t Transport) *Switch {
	return &Switch{t: t}
}

// Show issues a show command on the switch.
func (s *Switch) Show(ctx context.Context, cmd string) (gjson.Result, error) {
	return s.t.Show(ctx, cmd)
}

// Config issues a configuration command string on the switch.
func (s *Switch) Config(ctx context.Context, cmd string) (string, error) {
	return s.t.Config(ctx, cmd)
}

// rows collapses the device's scalar-vs-collection quirk: NX-API renders a
// table with a single row as an object and multiple rows as an array. The
// returned slice is in device order; a missing value yields nil.
func rows(v gjson.Result) []gjson.Result {
	switch {
	case !v.Exists():
		return nil
	case v.IsArray():
		return v.Array()
	default:
		return []gjson.Result{v}
	}
}
