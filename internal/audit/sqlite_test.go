package audit

import (
	"context"
	"errors"
	"testing"

	"github.com/tidwall/gjson"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestRecordAndListCommands(t *testing.T) {
	store := newTestStore(t)

	recs := []*Record{
		{SwitchAddr: "10.0.0.1", Kind: KindConfig, Command: "device-alias database ; device-alias distribute", Outcome: OutcomeOK},
		{SwitchAddr: "10.0.0.1", Kind: KindShow, Command: "show device-alias status", Outcome: OutcomeOK},
		{SwitchAddr: "10.0.0.1", Kind: KindConfig, Command: "zone name z1 vsan 1", Response: "Zone database full", Outcome: OutcomeMessage},
	}
	for _, r := range recs {
		if err := store.RecordCommand(r); err != nil {
			t.Fatalf("RecordCommand: %v", err)
		}
		if r.ID == "" {
			t.Error("RecordCommand did not assign an id")
		}
		if r.Time.IsZero() {
			t.Error("RecordCommand did not assign a timestamp")
		}
	}

	got, err := store.ListCommands(10)
	if err != nil {
		t.Fatalf("ListCommands: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("ListCommands returned %d records, want 3", len(got))
	}
	found := false
	for _, r := range got {
		if r.Command == "zone name z1 vsan 1" {
			found = true
			if r.Response != "Zone database full" || r.Outcome != OutcomeMessage {
				t.Errorf("record = %+v", r)
			}
		}
	}
	if !found {
		t.Error("zone command record missing from listing")
	}
}

func TestListCommandsLimit(t *testing.T) {
	store := newTestStore(t)

	for i := 0; i < 5; i++ {
		if err := store.RecordCommand(&Record{SwitchAddr: "10.0.0.1", Kind: KindShow, Command: "show vsan 1", Outcome: OutcomeOK}); err != nil {
			t.Fatalf("RecordCommand: %v", err)
		}
	}

	got, err := store.ListCommands(2)
	if err != nil {
		t.Fatalf("ListCommands: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("ListCommands(2) returned %d records", len(got))
	}
}

func TestRecordAndListSnapshots(t *testing.T) {
	store := newTestStore(t)

	snaps := []*Snapshot{
		{SwitchAddr: "10.0.0.1", Vsan: 1, ZoneMode: "enhanced", DefaultZone: "deny", SmartZoning: "disabled", Session: "none", AliasMode: "enhanced", AliasDistribution: "enabled"},
		{SwitchAddr: "10.0.0.1", Vsan: 20, ZoneMode: "basic", DefaultZone: "permit", Session: "cli [admin]", AliasLockedBy: "admin"},
	}
	for _, s := range snaps {
		if err := store.RecordSnapshot(s); err != nil {
			t.Fatalf("RecordSnapshot: %v", err)
		}
	}

	all, err := store.ListSnapshots(0, 10)
	if err != nil {
		t.Fatalf("ListSnapshots: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("ListSnapshots(0) returned %d, want 2", len(all))
	}

	v20, err := store.ListSnapshots(20, 10)
	if err != nil {
		t.Fatalf("ListSnapshots(20): %v", err)
	}
	if len(v20) != 1 {
		t.Fatalf("ListSnapshots(20) returned %d, want 1", len(v20))
	}
	if v20[0].Session != "cli [admin]" || v20[0].AliasLockedBy != "admin" {
		t.Errorf("snapshot = %+v", v20[0])
	}
}

// recordingTransport is a minimal inner transport for decorator tests.
type recordingTransport struct {
	showErr   error
	configMsg string
	configErr error
}

func (r *recordingTransport) Show(context.Context, string) (gjson.Result, error) {
	return gjson.Parse(`{"ok":true}`), r.showErr
}

func (r *recordingTransport) Config(context.Context, string) (string, error) {
	return r.configMsg, r.configErr
}

func TestTransportRecordsCommands(t *testing.T) {
	store := newTestStore(t)
	inner := &recordingTransport{configMsg: "Device Alias already present"}
	tr := NewTransport(inner, store, "10.0.0.1")
	ctx := context.Background()

	if _, err := tr.Show(ctx, "show device-alias database"); err != nil {
		t.Fatalf("Show: %v", err)
	}
	msg, err := tr.Config(ctx, "device-alias database ; no device-alias name h")
	if err != nil {
		t.Fatalf("Config: %v", err)
	}
	if msg != "Device Alias already present" {
		t.Errorf("Config msg = %q", msg)
	}

	recs, err := store.ListCommands(10)
	if err != nil {
		t.Fatalf("ListCommands: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("recorded %d commands, want 2", len(recs))
	}
	for _, r := range recs {
		switch r.Kind {
		case KindShow:
			if r.Outcome != OutcomeOK {
				t.Errorf("show outcome = %q", r.Outcome)
			}
		case KindConfig:
			if r.Outcome != OutcomeMessage || r.Response != "Device Alias already present" {
				t.Errorf("config record = %+v", r)
			}
		}
	}
}

func TestTransportRecordsTransportErrors(t *testing.T) {
	store := newTestStore(t)
	inner := &recordingTransport{configErr: errors.New("connection refused")}
	tr := NewTransport(inner, store, "10.0.0.1")

	if _, err := tr.Config(context.Background(), "zone name z1 vsan 1"); err == nil {
		t.Fatal("Config error was swallowed")
	}

	recs, err := store.ListCommands(10)
	if err != nil {
		t.Fatalf("ListCommands: %v", err)
	}
	if len(recs) != 1 || recs[0].Outcome != OutcomeError {
		t.Fatalf("records = %+v", recs)
	}
}
