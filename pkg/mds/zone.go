package mds

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/fabriclab/sanctl/internal/log"
)

// Zone member types.
const (
	MemberPWWN        = "pwwn"
	MemberDeviceAlias = "device-alias"
)

// defaultRecheckWait is the pause before re-reading zone status after a
// configuration change, giving the device time to settle the session.
const defaultRecheckWait = 2 * time.Second

// Device responses on the zone config path that are status reports, not
// failures. Substring-matched verbatim.
var zoneBenignMsgs = []string{
	"Current zoning mode same as specified zoning mode",
	"Set zoning mode command initiated. Check zone status",
	"Enhanced zone session has been created",
	"No zone policy change",
	"Smart Zoning distribution initiated. check zone status",
	"Smart-zoning is already enabled",
	"Smart-zoning is already disabled",
}

const (
	msgZoneNotLocked   = "Zone database not locked"
	msgNoPendingInfo   = "No pending info found"
	msgCommitInitiated = "Commit operation initiated. Check zone status"
)

// ZoneMember is one zone member, either a raw port WWN or a symbolic
// device-alias name.
type ZoneMember struct {
	Type  string
	Value string
}

// Zone manages one named zone inside a VSAN. Every accessor re-resolves
// the VSAN against the device and fails fast with VsanNotPresentError when
// it is gone.
type Zone struct {
	sw   *Switch
	vsan *Vsan
	name string

	// RecheckWait is the pause before lock state is re-read after a
	// config command. Exposed so tests can zero it.
	RecheckWait time.Duration
}

// NewZone creates a zone manager scoped to (switch, vsan, name).
func NewZone(sw *Switch, vsan *Vsan, name string) *Zone {
	return &Zone{sw: sw, vsan: vsan, name: name, RecheckWait: defaultRecheckWait}
}

// Name returns the zone name as the device knows it, or "" when the zone
// does not exist on the device yet.
func (z *Zone) Name(ctx context.Context) (string, error) {
	out, err := z.showZone(ctx)
	if err != nil {
		return "", err
	}
	return out.Get("zone_name").String(), nil
}

// Members returns the zone's member list in device order. A nil slice
// means the zone has no members (or does not exist); a single-member
// response is normalized to a one-element list.
func (z *Zone) Members(ctx context.Context) ([]ZoneMember, error) {
	out, err := z.showZone(ctx)
	if err != nil {
		return nil, err
	}
	rs := rows(out.Get("TABLE_zone_member.ROW_zone_member"))
	if rs == nil {
		return nil, nil
	}
	members := make([]ZoneMember, 0, len(rs))
	for _, r := range rs {
		members = append(members, memberFromRow(r))
	}
	return members, nil
}

func memberFromRow(r gjson.Result) ZoneMember {
	if wwn := r.Get("wwn"); wwn.Exists() {
		return ZoneMember{Type: MemberPWWN, Value: wwn.String()}
	}
	if alias := r.Get("dev_alias"); alias.Exists() {
		return ZoneMember{Type: MemberDeviceAlias, Value: alias.String()}
	}
	return ZoneMember{Type: r.Get("type").String(), Value: r.Get("name").String()}
}

// Mode returns the zoning mode of the VSAN, "basic" or "enhanced".
func (z *Zone) Mode(ctx context.Context) (string, error) {
	st, err := z.status(ctx)
	if err != nil {
		return "", err
	}
	return st.Get("mode").String(), nil
}

// SetMode switches the VSAN's zoning mode. mode is matched
// case-insensitively against "basic" and "enhanced".
func (z *Zone) SetMode(ctx context.Context, mode string) error {
	id, err := z.vsan.ID(ctx)
	if err != nil {
		return err
	}
	log.Debug("Setting zone mode", "vsan", id, "mode", mode)

	cmd := "terminal dont-ask ; zone mode enhanced vsan " + strconv.Itoa(id) + " ; no terminal dont-ask"
	switch strings.ToLower(mode) {
	case ModeEnhanced:
	case ModeBasic:
		cmd = strings.Replace(cmd, "zone mode", "no zone mode", 1)
	default:
		return &InvalidModeError{Mode: mode}
	}
	return z.send(ctx, cmd)
}

// DefaultZone returns the VSAN's default-zone policy, "permit" or "deny".
func (z *Zone) DefaultZone(ctx context.Context) (string, error) {
	st, err := z.status(ctx)
	if err != nil {
		return "", err
	}
	return st.Get("default_zone").String(), nil
}

// SetDefaultZone sets the default-zone policy. An unknown policy value is
// reported as a CLIError without any device contact.
func (z *Zone) SetDefaultZone(ctx context.Context, policy string) error {
	id, err := z.vsan.ID(ctx)
	if err != nil {
		return err
	}
	log.Debug("Setting default-zone policy", "vsan", id, "policy", policy)

	cmd := "terminal dont-ask ; zone default-zone permit vsan " + strconv.Itoa(id) + " ; no terminal dont-ask"
	switch strings.ToLower(policy) {
	case PolicyPermit:
	case PolicyDeny:
		cmd = strings.Replace(cmd, "zone default-zone", "no zone default-zone", 1)
	default:
		return &CLIError{
			Cmd: "No cmd sent",
			Msg: "Invalid default-zone value " + policy + " . Valid values are: " + PolicyPermit + "," + PolicyDeny,
		}
	}
	return z.send(ctx, cmd)
}

// SmartZone reports whether smart zoning is enabled on the VSAN.
func (z *Zone) SmartZone(ctx context.Context) (string, error) {
	st, err := z.status(ctx)
	if err != nil {
		return "", err
	}
	return st.Get("smart_zoning").String(), nil
}

// SetSmartZone enables or disables smart zoning on the VSAN.
func (z *Zone) SetSmartZone(ctx context.Context, enable bool) error {
	id, err := z.vsan.ID(ctx)
	if err != nil {
		return err
	}
	log.Debug("Setting smart zoning", "vsan", id, "enabled", enable)

	cmd := "zone smart-zoning enable vsan " + strconv.Itoa(id)
	if enable {
		cmd = "terminal dont-ask ; " + cmd + " ; no terminal dont-ask"
	} else {
		cmd = "terminal dont-ask ; no " + cmd + " ; no terminal dont-ask"
	}
	return z.send(ctx, cmd)
}

// Create defines the zone on the device.
func (z *Zone) Create(ctx context.Context) error {
	id, err := z.vsan.ID(ctx)
	if err != nil {
		return err
	}
	log.Debug("Creating zone", "name", z.name, "vsan", id)
	return z.send(ctx, "zone name "+z.name+" vsan "+strconv.Itoa(id))
}

// Delete removes the zone from the device.
func (z *Zone) Delete(ctx context.Context) error {
	id, err := z.vsan.ID(ctx)
	if err != nil {
		return err
	}
	log.Debug("Deleting zone", "name", z.name, "vsan", id)
	return z.send(ctx, "no zone name "+z.name+" vsan "+strconv.Itoa(id))
}

// AddMembers adds the given members to the zone in one configuration
// block. Each member is classified by shape: a well-formed WWN becomes a
// pwwn member, anything else a device-alias member. Empty or blank member
// strings fail with InvalidMemberError before any device contact.
func (z *Zone) AddMembers(ctx context.Context, members []string) error {
	id, err := z.vsan.ID(ctx)
	if err != nil {
		return err
	}

	parts := make([]string, 0, len(members)+1)
	parts = append(parts, "zone name "+z.name+" vsan "+strconv.Itoa(id))
	for _, m := range members {
		if strings.TrimSpace(m) == "" {
			return &InvalidMemberError{Member: m}
		}
		if IsWWN(m) {
			parts = append(parts, "member pwwn "+m)
		} else {
			parts = append(parts, "member device-alias "+m)
		}
	}
	log.Debug("Adding zone members", "name", z.name, "vsan", id, "count", len(members))
	return z.send(ctx, strings.Join(parts, " ; "))
}

// ZoneStatus is the per-VSAN zoning status record.
type ZoneStatus struct {
	Mode        string
	DefaultZone string
	SmartZoning string
	Session     string
}

// Status returns the zoning status of the VSAN in a single device read.
func (z *Zone) Status(ctx context.Context) (ZoneStatus, error) {
	st, err := z.status(ctx)
	if err != nil {
		return ZoneStatus{}, err
	}
	return ZoneStatus{
		Mode:        st.Get("mode").String(),
		DefaultZone: st.Get("default_zone").String(),
		SmartZoning: st.Get("smart_zoning").String(),
		Session:     st.Get("session").String(),
	}, nil
}

// Locked reports whether a zoning session holds the lock for the VSAN and
// returns the raw session detail string for error reporting.
func (z *Zone) Locked(ctx context.Context) (bool, string, error) {
	st, err := z.status(ctx)
	if err != nil {
		return false, "", err
	}
	detail := st.Get("session").String()
	return !strings.Contains(detail, "none"), detail, nil
}

// ClearLock clears the zoning lock for the VSAN. The device's own
// "nothing locked" responses are benign.
func (z *Zone) ClearLock(ctx context.Context) error {
	id, err := z.vsan.ID(ctx)
	if err != nil {
		return err
	}
	cmd := "terminal dont-ask ; clear zone lock vsan  " + strconv.Itoa(id) + " ; no terminal dont-ask"
	msg, err := z.sw.Config(ctx, cmd)
	if err != nil {
		return err
	}
	switch {
	case msg == "":
		return nil
	case strings.Contains(msg, msgZoneNotLocked), strings.Contains(msg, msgNoPendingInfo):
		log.Debug("Zone lock already clear", "vsan", id, "msg", msg)
		return nil
	default:
		log.Error("Zone lock clear rejected", "vsan", id, "msg", msg)
		return &CLIError{Cmd: cmd, Msg: msg}
	}
}

// send is the shared mutating path: refuse when the lock is already held,
// submit the command, treat the fixed allow-list of device messages as
// benign, and on any other message clear the lock (enhanced mode only)
// before failing. A successful submission is followed by a commit when the
// session ends up holding the lock.
func (z *Zone) send(ctx context.Context, cmd string) error {
	locked, detail, err := z.Locked(ctx)
	if err != nil {
		return err
	}
	if locked {
		return &CLIError{Cmd: "No cmd sent", Msg: "Zone lock is acquired. Lock details are: " + detail}
	}

	msg, err := z.sw.Config(ctx, cmd)
	if err != nil {
		return err
	}
	if msg != "" && !zoneBenign(msg) {
		log.Error("Zone command rejected", "cmd", cmd, "msg", msg)
		if err := z.clearLockIfEnhanced(ctx); err != nil {
			log.Error("Lock clear after failed zone command failed", "error", err)
		}
		return &CLIError{Cmd: cmd, Msg: msg}
	}
	if msg != "" {
		log.Debug("Zone command status", "cmd", cmd, "msg", msg)
	}
	return z.commitIfLocked(ctx)
}

func zoneBenign(msg string) bool {
	for _, b := range zoneBenignMsgs {
		if strings.Contains(msg, b) {
			return true
		}
	}
	return false
}

// clearLockIfEnhanced waits for the session to settle, then clears the
// lock when the VSAN zones in enhanced mode.
func (z *Zone) clearLockIfEnhanced(ctx context.Context) error {
	sleepCtx(ctx, z.RecheckWait)
	mode, err := z.Mode(ctx)
	if err != nil {
		return err
	}
	if mode != ModeEnhanced {
		return nil
	}
	return z.ClearLock(ctx)
}

// commitIfLocked waits for the session to settle and commits the pending
// zone changes when this session holds the lock. "No pending info found"
// from the device is swallowed.
func (z *Zone) commitIfLocked(ctx context.Context) error {
	sleepCtx(ctx, z.RecheckWait)
	locked, _, err := z.Locked(ctx)
	if err != nil {
		return err
	}
	if !locked {
		return nil
	}

	id, err := z.vsan.ID(ctx)
	if err != nil {
		return err
	}
	cmd := "zone commit vsan " + strconv.Itoa(id)
	log.Debug("Committing zone changes", "vsan", id)
	msg, err := z.sw.Config(ctx, cmd)
	if err != nil {
		return err
	}
	switch {
	case msg == "":
		return nil
	case strings.Contains(msg, msgCommitInitiated), strings.Contains(msg, msgNoPendingInfo):
		return nil
	default:
		log.Error("Zone commit rejected", "vsan", id, "msg", msg)
		return &CLIError{Cmd: cmd, Msg: msg}
	}
}

func (z *Zone) showZone(ctx context.Context) (gjson.Result, error) {
	id, err := z.vsan.ID(ctx)
	if err != nil {
		return gjson.Result{}, err
	}
	return z.sw.Show(ctx, "show zone name "+z.name+" vsan  "+strconv.Itoa(id))
}

func (z *Zone) status(ctx context.Context) (gjson.Result, error) {
	id, err := z.vsan.ID(ctx)
	if err != nil {
		return gjson.Result{}, err
	}
	out, err := z.sw.Show(ctx, "show zone status vsan  "+strconv.Itoa(id))
	if err != nil {
		return gjson.Result{}, err
	}
	return out.Get("TABLE_zone_status.ROW_zone_status"), nil
}
