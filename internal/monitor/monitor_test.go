package monitor

import (
	"context"
	"testing"

	"github.com/tidwall/gjson"

	"github.com/fabriclab/sanctl/internal/audit"
	"github.com/fabriclab/sanctl/pkg/mds"
)

type fakeTransport struct {
	shows map[string]string
}

func (f *fakeTransport) Show(_ context.Context, cmd string) (gjson.Result, error) {
	return gjson.Parse(f.shows[cmd]), nil
}

func (f *fakeTransport) Config(context.Context, string) (string, error) {
	return "", nil
}

func TestPollRecordsSnapshots(t *testing.T) {
	f := &fakeTransport{shows: map[string]string{
		"show device-alias status": `{"database_mode":"enhanced","fabric_distribution":"enabled","Locked_by_user":"admin"}`,
		"show vsan 1":              `{"TABLE_vsan":{"ROW_vsan":{"vsan_id":1}}}`,
		"show zone status vsan  1": `{"TABLE_zone_status":{"ROW_zone_status":{"mode":"enhanced","default_zone":"deny","smart_zoning":"disabled","session":"cli [admin]"}}}`,
	}}
	store, err := audit.NewSQLiteStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	defer store.Close()

	m := New(mds.NewSwitch(f), store, "10.0.0.1", "@every 1h", []int{1})
	m.poll()

	snaps, err := store.ListSnapshots(1, 10)
	if err != nil {
		t.Fatalf("ListSnapshots: %v", err)
	}
	if len(snaps) != 1 {
		t.Fatalf("recorded %d snapshots, want 1", len(snaps))
	}
	s := snaps[0]
	if s.ZoneMode != "enhanced" || s.Session != "cli [admin]" {
		t.Errorf("zone state = (%q, %q)", s.ZoneMode, s.Session)
	}
	if s.AliasMode != "enhanced" || s.AliasDistribution != "enabled" || s.AliasLockedBy != "admin" {
		t.Errorf("alias state = (%q, %q, %q)", s.AliasMode, s.AliasDistribution, s.AliasLockedBy)
	}
}

func TestPollSkipsMissingVsan(t *testing.T) {
	f := &fakeTransport{shows: map[string]string{
		"show device-alias status": `{"database_mode":"basic","fabric_distribution":"disabled"}`,
	}}
	store, err := audit.NewSQLiteStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	defer store.Close()

	m := New(mds.NewSwitch(f), store, "10.0.0.1", "@every 1h", []int{99})
	m.poll()

	snaps, err := store.ListSnapshots(0, 10)
	if err != nil {
		t.Fatalf("ListSnapshots: %v", err)
	}
	if len(snaps) != 0 {
		t.Fatalf("recorded %d snapshots for missing vsan, want 0", len(snaps))
	}
}
