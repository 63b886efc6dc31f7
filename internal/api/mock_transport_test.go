package api

import (
	"context"
	"sync"

	"github.com/tidwall/gjson"

	"github.com/fabriclab/sanctl/pkg/mds"
)

// mockTransport is an in-memory switch for handler tests.
type mockTransport struct {
	mu      sync.Mutex
	shows   map[string]string
	replies map[string]string
	sent    []string
}

func newMockTransport() *mockTransport {
	m := &mockTransport{
		shows:   make(map[string]string),
		replies: make(map[string]string),
	}
	// A healthy, unlocked single-VSAN fabric by default.
	m.shows["show device-alias status"] = `{"database_mode":"basic","fabric_distribution":"disabled"}`
	m.shows["show device-alias database"] = `{"number_of_entries":"1","TABLE_device_alias_database":{"ROW_device_alias_database":{"dev_alias_name":"host1","pwwn":"21:00:00:0e:1e:30:34:a5"}}}`
	m.shows["show vsan 1"] = `{"TABLE_vsan":{"ROW_vsan":{"vsan_id":1}}}`
	m.shows["show zone status vsan  1"] = `{"TABLE_zone_status":{"ROW_zone_status":{"mode":"basic","default_zone":"deny","smart_zoning":"disabled","session":"none"}}}`
	m.shows["show zone name z1 vsan  1"] = `{"zone_name":"z1","TABLE_zone_member":{"ROW_zone_member":{"wwn":"21:00:00:0e:1e:30:34:a5"}}}`
	return m
}

func (m *mockTransport) Show(_ context.Context, cmd string) (gjson.Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return gjson.Parse(m.shows[cmd]), nil
}

func (m *mockTransport) Config(_ context.Context, cmd string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, cmd)
	return m.replies[cmd], nil
}

func (m *mockTransport) sentCommands() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.sent))
	copy(out, m.sent)
	return out
}

var _ mds.Transport = (*mockTransport)(nil)
