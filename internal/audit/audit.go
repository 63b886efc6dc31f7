// Package audit persists a trail of every command sent to a switch and
// periodic fabric state snapshots taken by the monitor.
package audit

import (
	"errors"
	"time"
)

// Command kinds.
const (
	KindShow   = "show"
	KindConfig = "config"
)

// Command outcomes.
const (
	OutcomeOK      = "ok"      // clean device response
	OutcomeMessage = "message" // device answered with a message, classified upstream
	OutcomeError   = "error"   // transport or protocol failure
)

// ErrNotFound is returned when a lookup matches nothing.
var ErrNotFound = errors.New("audit: record not found")

// Record is one command sent to a switch and what came back.
type Record struct {
	ID         string    `json:"id"`
	Time       time.Time `json:"time"`
	SwitchAddr string    `json:"switch_addr"`
	Kind       string    `json:"kind"`
	Command    string    `json:"command"`
	Response   string    `json:"response"`
	Outcome    string    `json:"outcome"`
	DurationMS int64     `json:"duration_ms"`
}

// Snapshot is one point-in-time observation of fabric state for a VSAN,
// written by the monitor.
type Snapshot struct {
	ID                string    `json:"id"`
	Time              time.Time `json:"time"`
	SwitchAddr        string    `json:"switch_addr"`
	Vsan              int       `json:"vsan"`
	ZoneMode          string    `json:"zone_mode"`
	DefaultZone       string    `json:"default_zone"`
	SmartZoning       string    `json:"smart_zoning"`
	Session           string    `json:"session"`
	AliasMode         string    `json:"alias_mode"`
	AliasDistribution string    `json:"alias_distribution"`
	AliasLockedBy     string    `json:"alias_locked_by"`
}

// Store is the audit persistence interface.
type Store interface {
	RecordCommand(rec *Record) error
	ListCommands(limit int) ([]Record, error)
	RecordSnapshot(snap *Snapshot) error
	ListSnapshots(vsan, limit int) ([]Snapshot, error)
	Close() error
}
