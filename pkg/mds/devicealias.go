package mds

import (
	"context"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/fabriclab/sanctl/internal/log"
)

// Device responses treated as benign no-ops or handled by the commit
// protocol. These literals are the wire contract with the device and must
// not be reworded.
const (
	msgAliasPresent     = "Device Alias already present"
	msgPwwnPresent      = "Another device-alias already present with the same pwwn"
	msgNoPendingChanges = "There are no pending changes"
	msgEnhancedMember   = "Device-alias enhanced zone member present"
	msgCommitInProgress = "Commit in progress. Check the status."
)

// defaultCommitWait is how long to wait when the device reports a commit
// already in progress. One wait, no re-poll.
const defaultCommitWait = 5 * time.Second

// AliasEntry is one name->pwwn mapping. Batches are applied in slice order.
type AliasEntry struct {
	Name string
	PWWN string
}

// DeviceAlias manages the switch-global device-alias database: the
// name->pwwn mappings, the database mode, the CFS distribution flag and
// the distribution lock. It holds no local state; every read re-queries
// the device.
type DeviceAlias struct {
	sw *Switch

	// CommitWait is the pause after the device reports "commit in
	// progress". Exposed so tests can zero it.
	CommitWait time.Duration
}

// NewDeviceAlias creates a device-alias manager for sw.
func NewDeviceAlias(sw *Switch) *DeviceAlias {
	return &DeviceAlias{sw: sw, CommitWait: defaultCommitWait}
}

// Facts is the device-alias status record in a single device read.
type Facts struct {
	Mode         string
	Distribution string
	LockedBy     string
}

// Facts returns mode, distribution state and lock holder together.
func (d *DeviceAlias) Facts(ctx context.Context) (Facts, error) {
	st, err := d.status(ctx)
	if err != nil {
		return Facts{}, err
	}
	return Facts{
		Mode:         st.Get("database_mode").String(),
		Distribution: st.Get("fabric_distribution").String(),
		LockedBy:     st.Get("Locked_by_user").String(),
	}, nil
}

// Mode returns the database mode, "basic" or "enhanced".
func (d *DeviceAlias) Mode(ctx context.Context) (string, error) {
	st, err := d.status(ctx)
	if err != nil {
		return "", err
	}
	return st.Get("database_mode").String(), nil
}

// SetMode switches the database mode. mode is matched case-insensitively
// against "basic" and "enhanced"; anything else is an InvalidModeError.
// When the device rejects the command and fabric distribution is enabled,
// one commit is flushed before the CLIError is returned so a partial
// change is not left pending.
func (d *DeviceAlias) SetMode(ctx context.Context, mode string) error {
	log.Debug("Setting device-alias mode", "mode", mode)

	var cmd string
	switch strings.ToLower(mode) {
	case ModeEnhanced:
		cmd = "device-alias database ; device-alias mode enhanced"
	case ModeBasic:
		cmd = "device-alias database ; no device-alias mode enhanced"
	default:
		return &InvalidModeError{Mode: mode}
	}

	msg, err := d.sw.Config(ctx, cmd)
	if err != nil {
		return err
	}
	if msg != "" {
		if err := d.commitIfDistributing(ctx, mode); err != nil {
			log.Error("Commit after failed mode change failed", "error", err)
		}
		return &CLIError{Cmd: cmd, Msg: msg}
	}
	return d.commitIfDistributing(ctx, mode)
}

// Distribute reports whether CFS fabric distribution is enabled.
func (d *DeviceAlias) Distribute(ctx context.Context) (bool, error) {
	st, err := d.status(ctx)
	if err != nil {
		return false, err
	}
	return strings.ToLower(st.Get("fabric_distribution").String()) == "enabled", nil
}

// SetDistribute enables or disables CFS fabric distribution.
func (d *DeviceAlias) SetDistribute(ctx context.Context, distribute bool) error {
	cmd := "device-alias database ; no device-alias distribute"
	if distribute {
		cmd = "device-alias database ; device-alias distribute"
	}
	log.Debug("Setting device-alias distribution", "enabled", distribute)

	msg, err := d.sw.Config(ctx, cmd)
	if err != nil {
		return err
	}
	if msg != "" {
		return &CLIError{Cmd: cmd, Msg: msg}
	}
	return nil
}

// Locked reports whether another session holds the CFS device-alias lock.
func (d *DeviceAlias) Locked(ctx context.Context) (bool, error) {
	_, held, err := d.LockHolder(ctx)
	return held, err
}

// LockHolder returns the identity holding the CFS device-alias lock, if any.
func (d *DeviceAlias) LockHolder(ctx context.Context) (string, bool, error) {
	st, err := d.status(ctx)
	if err != nil {
		return "", false, err
	}
	user := st.Get("Locked_by_user")
	if !user.Exists() {
		return "", false, nil
	}
	return user.String(), true, nil
}

// Database returns the full device-alias database as a name->pwwn map.
// A nil map means the device reports no entries at all, as opposed to an
// empty-but-present database.
func (d *DeviceAlias) Database(ctx context.Context) (map[string]string, error) {
	out, err := d.sw.Show(ctx, "show device-alias database")
	if err != nil {
		return nil, err
	}
	entries := rows(out.Get("TABLE_device_alias_database.ROW_device_alias_database"))
	if entries == nil {
		return nil, nil
	}
	db := make(map[string]string, len(entries))
	for _, e := range entries {
		db[e.Get("dev_alias_name").String()] = e.Get("pwwn").String()
	}
	return db, nil
}

// Create adds the given alias entries in slice order, one command per
// entry. "Already present" responses (for either the alias name or the
// pwwn) are benign and skipped; any other device message aborts the batch
// after clearing the lock (enhanced mode) and flushing one commit
// (distribution enabled). A fully successful batch is followed by a single
// commit when distribution is enabled.
func (d *DeviceAlias) Create(ctx context.Context, entries []AliasEntry) error {
	mode, err := d.Mode(ctx)
	if err != nil {
		return err
	}

	for _, e := range entries {
		log.Debug("Creating device-alias", "name", e.Name, "pwwn", e.PWWN)
		cmd := "device-alias database ;  device-alias name " + e.Name + " pwwn " + e.PWWN + " ; "
		msg, err := d.sw.Config(ctx, cmd)
		if err != nil {
			return err
		}
		if msg == "" {
			continue
		}
		if strings.Contains(msg, msgAliasPresent) || strings.Contains(msg, msgPwwnPresent) {
			log.Info("Device-alias already present, skipping", "name", e.Name, "pwwn", e.PWWN)
			continue
		}
		return d.fail(ctx, mode, &CLIError{Cmd: cmd, Msg: msg})
	}

	return d.commitIfDistributing(ctx, mode)
}

// Delete removes one device-alias entry by name.
func (d *DeviceAlias) Delete(ctx context.Context, name string) error {
	log.Debug("Deleting device-alias", "name", name)
	cmd := "device-alias database ; no device-alias name " + name
	return d.applyOne(ctx, cmd)
}

// Rename renames a device-alias entry in place.
func (d *DeviceAlias) Rename(ctx context.Context, oldName, newName string) error {
	log.Debug("Renaming device-alias", "old", oldName, "new", newName)
	cmd := "device-alias database ; device-alias rename " + oldName + " " + newName
	return d.applyOne(ctx, cmd)
}

// ClearDatabase removes every entry from the device-alias database.
func (d *DeviceAlias) ClearDatabase(ctx context.Context) error {
	log.Debug("Clearing device-alias database")
	cmd := "terminal dont-ask ; device-alias database ; clear device-alias database ; no terminal dont-ask "
	return d.applyOne(ctx, cmd)
}

// ClearLock clears the CFS device-alias session. Fire and forget: the
// device's own "nothing to clear" responses are not inspected.
func (d *DeviceAlias) ClearLock(ctx context.Context) error {
	log.Debug("Clearing device-alias session lock")
	cmd := "terminal dont-ask ; device-alias database ; clear device-alias session ; no terminal dont-ask "
	_, err := d.sw.Config(ctx, cmd)
	return err
}

// applyOne runs a single mutating command with the shared error pattern:
// any device message is fatal, preceded by lock clearing (enhanced mode)
// and a commit flush (distribution enabled); success is followed by a
// commit when distribution is enabled.
func (d *DeviceAlias) applyOne(ctx context.Context, cmd string) error {
	mode, err := d.Mode(ctx)
	if err != nil {
		return err
	}
	msg, err := d.sw.Config(ctx, cmd)
	if err != nil {
		return err
	}
	if msg != "" {
		return d.fail(ctx, mode, &CLIError{Cmd: cmd, Msg: msg})
	}
	return d.commitIfDistributing(ctx, mode)
}

// fail performs best-effort cleanup for a fatal device response: clear the
// lock when the database mode is enhanced, flush one commit when
// distribution is enabled, then return the original error. Cleanup
// failures are logged, never allowed to mask cliErr.
func (d *DeviceAlias) fail(ctx context.Context, mode string, cliErr *CLIError) error {
	if err := d.clearLockIfEnhanced(ctx, mode); err != nil {
		log.Error("Lock clear after failed command failed", "error", err)
	}
	if err := d.commitIfDistributing(ctx, mode); err != nil {
		log.Error("Commit after failed command failed", "error", err)
	}
	return cliErr
}

func (d *DeviceAlias) clearLockIfEnhanced(ctx context.Context, mode string) error {
	if strings.ToLower(mode) != ModeEnhanced {
		return nil
	}
	return d.ClearLock(ctx)
}

func (d *DeviceAlias) commitIfDistributing(ctx context.Context, mode string) error {
	dist, err := d.Distribute(ctx)
	if err != nil {
		return err
	}
	if !dist {
		return nil
	}
	return d.sendCommit(ctx, mode)
}

// sendCommit issues a CFS commit and classifies the device response:
// nothing pending is benign, an in-progress commit gets a single fixed
// wait, an enhanced-zone-member conflict clears the lock before failing,
// and everything else is fatal.
func (d *DeviceAlias) sendCommit(ctx context.Context, mode string) error {
	cmd := "terminal dont-ask ; device-alias commit ; no terminal dont-ask "
	msg, err := d.sw.Config(ctx, cmd)
	if err != nil {
		return err
	}
	if msg == "" {
		return nil
	}
	msg = strings.TrimSpace(msg)
	switch {
	case strings.Contains(msg, msgNoPendingChanges):
		log.Debug("Commit skipped, no pending changes")
		return nil
	case strings.Contains(msg, msgEnhancedMember):
		if err := d.clearLockIfEnhanced(ctx, mode); err != nil {
			log.Error("Lock clear after failed commit failed", "error", err)
		}
		return &CLIError{Cmd: cmd, Msg: msg}
	case strings.Contains(msg, msgCommitInProgress):
		log.Debug("Commit in progress, waiting", "wait", d.CommitWait)
		sleepCtx(ctx, d.CommitWait)
		return nil
	default:
		return &CLIError{Cmd: cmd, Msg: msg}
	}
}

func (d *DeviceAlias) status(ctx context.Context) (gjson.Result, error) {
	return d.sw.Show(ctx, "show device-alias status")
}

// sleepCtx pauses for at most d, returning early if ctx is cancelled.
func sleepCtx(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
