// Package monitor periodically observes fabric state: the device-alias
// CFS lock and per-VSAN zone status. Each observation is written to the
// audit store as a snapshot, and lock transitions are logged so an
// operator can spot a stuck session before it blocks a change window.
package monitor

import (
	"context"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/fabriclab/sanctl/internal/audit"
	"github.com/fabriclab/sanctl/internal/log"
	"github.com/fabriclab/sanctl/pkg/mds"
)

const pollTimeout = 30 * time.Second

// Monitor runs scheduled fabric state polls.
type Monitor struct {
	cron  *cron.Cron
	sw    *mds.Switch
	store audit.Store
	addr  string
	spec  string
	vsans []int

	mu          sync.Mutex
	lastSession map[int]string
	lastLocked  string
}

// New creates a monitor for the given switch. spec is a cron expression
// or descriptor like "@every 5m"; vsans are the VSANs whose zone status
// gets polled.
func New(sw *mds.Switch, store audit.Store, addr, spec string, vsans []int) *Monitor {
	return &Monitor{
		cron:        cron.New(),
		sw:          sw,
		store:       store,
		addr:        addr,
		spec:        spec,
		vsans:       vsans,
		lastSession: make(map[int]string),
	}
}

// Start schedules the poll and runs one immediately so state is available
// right away.
func (m *Monitor) Start() error {
	if _, err := m.cron.AddFunc(m.spec, m.poll); err != nil {
		return err
	}
	m.cron.Start()
	log.Info("Fabric monitor started", "schedule", m.spec, "vsans", m.vsans)
	go m.poll()
	return nil
}

// Stop stops the schedule and waits for a running poll to finish.
func (m *Monitor) Stop() {
	ctx := m.cron.Stop()
	<-ctx.Done()
	log.Info("Fabric monitor stopped")
}

// poll takes one observation of alias facts plus zone status per VSAN.
func (m *Monitor) poll() {
	ctx, cancel := context.WithTimeout(context.Background(), pollTimeout)
	defer cancel()

	alias := mds.NewDeviceAlias(m.sw)
	facts, err := alias.Facts(ctx)
	if err != nil {
		log.Error("Monitor failed to read device-alias status", "error", err)
		return
	}
	m.observeAliasLock(facts.LockedBy)

	for _, v := range m.vsans {
		zone := mds.NewZone(m.sw, mds.NewVsan(m.sw, v), "")
		st, err := zone.Status(ctx)
		if err != nil {
			log.Error("Monitor failed to read zone status", "vsan", v, "error", err)
			continue
		}
		m.observeSession(v, st.Session)

		snap := &audit.Snapshot{
			SwitchAddr:        m.addr,
			Vsan:              v,
			ZoneMode:          st.Mode,
			DefaultZone:       st.DefaultZone,
			SmartZoning:       st.SmartZoning,
			Session:           st.Session,
			AliasMode:         facts.Mode,
			AliasDistribution: facts.Distribution,
			AliasLockedBy:     facts.LockedBy,
		}
		if err := m.store.RecordSnapshot(snap); err != nil {
			log.Error("Monitor failed to record snapshot", "vsan", v, "error", err)
		}
	}
}

func (m *Monitor) observeAliasLock(lockedBy string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if lockedBy == m.lastLocked {
		return
	}
	if lockedBy != "" {
		log.Warn("Device-alias CFS lock acquired", "locked_by", lockedBy)
	} else if m.lastLocked != "" {
		log.Info("Device-alias CFS lock released", "was_locked_by", m.lastLocked)
	}
	m.lastLocked = lockedBy
}

func (m *Monitor) observeSession(vsan int, session string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	prev, seen := m.lastSession[vsan]
	if seen && prev != session {
		log.Info("Zone session changed", "vsan", vsan, "from", prev, "to", session)
	}
	m.lastSession[vsan] = session
}
