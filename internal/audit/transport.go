package audit

import (
	"context"
	"time"

	"github.com/tidwall/gjson"

	"github.com/fabriclab/sanctl/internal/log"
	"github.com/fabriclab/sanctl/pkg/mds"
)

// Transport wraps a switch transport and records every command that goes
// through it. Recording failures are logged and never block the command
// path.
type Transport struct {
	next  mds.Transport
	store Store
	addr  string
}

var _ mds.Transport = (*Transport)(nil)

// NewTransport decorates next with audit recording for the switch at addr.
func NewTransport(next mds.Transport, store Store, addr string) *Transport {
	return &Transport{next: next, store: store, addr: addr}
}

// Show passes a show command through and records the outcome.
func (t *Transport) Show(ctx context.Context, cmd string) (gjson.Result, error) {
	start := time.Now()
	out, err := t.next.Show(ctx, cmd)
	rec := &Record{
		SwitchAddr: t.addr,
		Kind:       KindShow,
		Command:    cmd,
		Outcome:    OutcomeOK,
		DurationMS: time.Since(start).Milliseconds(),
	}
	if err != nil {
		rec.Outcome = OutcomeError
		rec.Response = err.Error()
	}
	t.record(rec)
	return out, err
}

// Config passes a configuration command through and records the device's
// response alongside it.
func (t *Transport) Config(ctx context.Context, cmd string) (string, error) {
	start := time.Now()
	msg, err := t.next.Config(ctx, cmd)
	rec := &Record{
		SwitchAddr: t.addr,
		Kind:       KindConfig,
		Command:    cmd,
		Response:   msg,
		Outcome:    OutcomeOK,
		DurationMS: time.Since(start).Milliseconds(),
	}
	switch {
	case err != nil:
		rec.Outcome = OutcomeError
		rec.Response = err.Error()
	case msg != "":
		rec.Outcome = OutcomeMessage
	}
	t.record(rec)
	return msg, err
}

func (t *Transport) record(rec *Record) {
	if err := t.store.RecordCommand(rec); err != nil {
		log.Error("Failed to record audit entry", "command", rec.Command, "error", err)
	}
}
