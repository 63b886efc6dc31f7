package mds

import (
	"context"
	"errors"
	"testing"
)

func setInterface(f *fakeTransport, name, body string) {
	f.shows["show interface "+name] = `{"TABLE_interface":{"ROW_interface":` + body + `}}`
}

func TestFcGetters(t *testing.T) {
	f := newFakeTransport()
	setInterface(f, "fc1/4", `{"interface":"fc1/4","description":"array port","oper_mode":"F","oper_speed":"32","admin_trunk_mode":"off","state":"up"}`)
	fc := NewFc(NewSwitch(f), "fc1/4")
	ctx := context.Background()

	if got, _ := fc.Description(ctx); got != "array port" {
		t.Errorf("Description = %q", got)
	}
	if got, _ := fc.Mode(ctx); got != "F" {
		t.Errorf("Mode = %q", got)
	}
	if got, _ := fc.Speed(ctx); got != "32" {
		t.Errorf("Speed = %q", got)
	}
	if got, _ := fc.Trunk(ctx); got != "off" {
		t.Errorf("Trunk = %q", got)
	}
	if got, _ := fc.Status(ctx); got != "up" {
		t.Errorf("Status = %q", got)
	}
	if fc.Name() != "fc1/4" {
		t.Errorf("Name = %q", fc.Name())
	}
}

func TestFcSetters(t *testing.T) {
	f := newFakeTransport()
	fc := NewFc(NewSwitch(f), "fc1/4")
	ctx := context.Background()

	steps := []struct {
		run  func() error
		want string
	}{
		{func() error { return fc.SetDescription(ctx, "uplink to array") }, "interface fc1/4 ; switchport description uplink to array"},
		{func() error { return fc.SetMode(ctx, "E") }, "interface fc1/4 ; switchport mode E"},
		{func() error { return fc.SetSpeed(ctx, "auto") }, "interface fc1/4 ; switchport speed auto"},
		{func() error { return fc.SetTrunk(ctx, "auto") }, "interface fc1/4 ; switchport trunk mode auto"},
		{func() error { return fc.SetStatus(ctx, NoShutdown) }, "interface fc1/4 ; no shutdown"},
		{func() error { return fc.SetStatus(ctx, Shutdown) }, "interface fc1/4 ; shutdown"},
	}
	var want []string
	for _, s := range steps {
		if err := s.run(); err != nil {
			t.Fatalf("setter for %q: %v", s.want, err)
		}
		want = append(want, s.want)
	}
	assertSent(t, f, want...)
}

func TestFcSetterRejected(t *testing.T) {
	f := newFakeTransport()
	f.replies["interface fc1/4 ; switchport mode X"] = "Invalid port mode"
	fc := NewFc(NewSwitch(f), "fc1/4")

	err := fc.SetMode(context.Background(), "X")
	var cle *CLIError
	if !errors.As(err, &cle) {
		t.Fatalf("SetMode = %v, want CLIError", err)
	}
	if cle.Msg != "Invalid port mode" {
		t.Errorf("Msg = %q", cle.Msg)
	}
}

func TestFcTransceiverDetails(t *testing.T) {
	f := newFakeTransport()
	f.shows["show interface fc1/4 transceiver"] = `{"TABLE_interface_trans":{"ROW_interface_trans":{"sfp":"present","name":"CISCO-FINISAR"}}}`
	fc := NewFc(NewSwitch(f), "fc1/4")

	out, err := fc.TransceiverDetails(context.Background())
	if err != nil {
		t.Fatalf("TransceiverDetails: %v", err)
	}
	if out.Get("sfp").String() != "present" {
		t.Errorf("sfp = %q, want present", out.Get("sfp").String())
	}
}

func TestPortChannelCreateDelete(t *testing.T) {
	f := newFakeTransport()
	pc := NewPortChannel(NewSwitch(f), 22)
	ctx := context.Background()

	if err := pc.Create(ctx); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := pc.Delete(ctx); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	assertSent(t, f,
		"interface port-channel 22",
		"no interface port-channel 22",
	)
}

func TestPortChannelSharesInterfaceSurface(t *testing.T) {
	f := newFakeTransport()
	setInterface(f, "port-channel22", `{"description":"isl to core","state":"up"}`)
	pc := NewPortChannel(NewSwitch(f), 22)
	ctx := context.Background()

	if got, _ := pc.Description(ctx); got != "isl to core" {
		t.Errorf("Description = %q", got)
	}
	if err := pc.SetDescription(ctx, "isl to edge"); err != nil {
		t.Fatalf("SetDescription: %v", err)
	}
	assertSent(t, f, "interface port-channel22 ; switchport description isl to edge")
}

func TestPortChannelSetChannelMode(t *testing.T) {
	tests := []struct {
		mode string
		want string
	}{
		{"active", "interface port-channel22 ; channel mode active"},
		{"ON", "interface port-channel22 ; no channel mode active"},
	}
	for _, tt := range tests {
		t.Run(tt.mode, func(t *testing.T) {
			f := newFakeTransport()
			pc := NewPortChannel(NewSwitch(f), 22)

			if err := pc.SetChannelMode(context.Background(), tt.mode); err != nil {
				t.Fatalf("SetChannelMode(%q): %v", tt.mode, err)
			}
			assertSent(t, f, tt.want)
		})
	}
}

func TestPortChannelSetChannelModeInvalid(t *testing.T) {
	f := newFakeTransport()
	pc := NewPortChannel(NewSwitch(f), 22)

	err := pc.SetChannelMode(context.Background(), "passive")
	var ime *InvalidModeError
	if !errors.As(err, &ime) {
		t.Fatalf("SetChannelMode = %v, want InvalidModeError", err)
	}
	assertSent(t, f)
}

func TestPortChannelMembers(t *testing.T) {
	f := newFakeTransport()
	f.shows["show port-channel database interface port-channel 22"] = `{"TABLE_port_channel_database":{"ROW_port_channel_database":{"interface":"port-channel22","protocol":"active","TABLE_member_ports":{"ROW_member_ports":[{"port":"fc1/11"},{"port":"fc1/12"}]}}}}`
	pc := NewPortChannel(NewSwitch(f), 22)

	members, err := pc.Members(context.Background())
	if err != nil {
		t.Fatalf("Members: %v", err)
	}
	if len(members) != 2 || members[0].Name() != "fc1/11" || members[1].Name() != "fc1/12" {
		t.Fatalf("Members = %v", members)
	}

	mode, err := pc.ChannelMode(context.Background())
	if err != nil || mode != "active" {
		t.Errorf("ChannelMode = (%q, %v), want active", mode, err)
	}
}

func TestPortChannelAddMembers(t *testing.T) {
	f := newFakeTransport()
	sw := NewSwitch(f)
	pc := NewPortChannel(sw, 22)

	err := pc.AddMembers(context.Background(), []*Fc{
		NewFc(sw, "fc1/11"),
		NewFc(sw, "fc1/12"),
	})
	if err != nil {
		t.Fatalf("AddMembers: %v", err)
	}
	assertSent(t, f,
		"interface fc1/11 ; channel-group 22 force",
		"interface fc1/12 ; channel-group 22 force",
	)
}

func TestPortChannelAddMembersStopsOnRejection(t *testing.T) {
	f := newFakeTransport()
	sw := NewSwitch(f)
	f.replies["interface fc1/11 ; channel-group 22 force"] = "Port not compatible"
	pc := NewPortChannel(sw, 22)

	err := pc.AddMembers(context.Background(), []*Fc{
		NewFc(sw, "fc1/11"),
		NewFc(sw, "fc1/12"),
	})
	var cle *CLIError
	if !errors.As(err, &cle) {
		t.Fatalf("AddMembers = %v, want CLIError", err)
	}
	assertSent(t, f, "interface fc1/11 ; channel-group 22 force")
}
