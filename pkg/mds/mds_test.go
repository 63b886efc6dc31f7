package mds

import (
	"context"
	"testing"

	"github.com/tidwall/gjson"
)

// fakeTransport is an in-memory Transport for tests. Show output is keyed
// by the exact command string; Config records every submitted command and
// answers from replies, defaulting to a clean (empty) response.
type fakeTransport struct {
	shows     map[string]string   // show cmd -> JSON body
	showQueue map[string][]string // show cmd -> successive JSON bodies, consumed first
	replies   map[string]string   // config cmd -> device message
	errs      map[string]error    // config cmd -> transport error
	sent      []string
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{
		shows:     make(map[string]string),
		showQueue: make(map[string][]string),
		replies:   make(map[string]string),
		errs:      make(map[string]error),
	}
}

func (f *fakeTransport) Show(_ context.Context, cmd string) (gjson.Result, error) {
	if q := f.showQueue[cmd]; len(q) > 0 {
		body := q[0]
		f.showQueue[cmd] = q[1:]
		return gjson.Parse(body), nil
	}
	body, ok := f.shows[cmd]
	if !ok {
		return gjson.Result{}, nil
	}
	return gjson.Parse(body), nil
}

func (f *fakeTransport) Config(_ context.Context, cmd string) (string, error) {
	f.sent = append(f.sent, cmd)
	if err := f.errs[cmd]; err != nil {
		return "", err
	}
	return f.replies[cmd], nil
}

var _ Transport = (*fakeTransport)(nil)

// assertSent fails unless the transport saw exactly the given config
// commands, in order.
func assertSent(t *testing.T, f *fakeTransport, want ...string) {
	t.Helper()
	if len(f.sent) != len(want) {
		t.Fatalf("sent %d commands, want %d:\n got %q\nwant %q", len(f.sent), len(want), f.sent, want)
	}
	for i := range want {
		if f.sent[i] != want[i] {
			t.Errorf("command %d = %q, want %q", i, f.sent[i], want[i])
		}
	}
}
