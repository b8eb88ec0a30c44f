package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/yaoqiang/voxwords/internal/domain"
	"github.com/yaoqiang/voxwords/internal/pipeline"
)

var (
	enDE = domain.LanguagePair{Source: "en", Target: "de"}
	enFR = domain.LanguagePair{Source: "en", Target: "fr"}
)

type fakeSession struct {
	pair  domain.LanguagePair
	block bool

	mu     sync.Mutex
	closed bool
	calls  int
}

func (s *fakeSession) Prepare(context.Context) error { return nil }

func (s *fakeSession) Translate(ctx context.Context, text string) (string, error) {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	if s.block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	return text + "@" + s.pair.Target.String(), nil
}

func (s *fakeSession) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func (s *fakeSession) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func (s *fakeSession) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

type openerMock struct {
	OpenErr error
	// BlockFirst makes the first opened session hang in Translate until its
	// consumer is torn down.
	BlockFirst bool

	mu       sync.Mutex
	sessions []*fakeSession
}

func (m *openerMock) Open(_ context.Context, pair domain.LanguagePair) (pipeline.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.OpenErr != nil {
		return nil, m.OpenErr
	}
	s := &fakeSession{pair: pair, block: m.BlockFirst && len(m.sessions) == 0}
	m.sessions = append(m.sessions, s)
	return s, nil
}

func (m *openerMock) Sessions() []*fakeSession {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*fakeSession, len(m.sessions))
	copy(out, m.sessions)
	return out
}

func newTestHost(t *testing.T, opener Opener) (*Host, *pipeline.Pipeline) {
	t.Helper()
	p := pipeline.New(slog.Default(), nil, pipeline.DefaultRetryPolicy())
	h := NewHost(slog.Default(), p, opener)
	t.Cleanup(h.Stop)
	return h, p
}

func translate(t *testing.T, p *pipeline.Pipeline, text string) (string, error) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	return p.Translate(ctx, uuid.New(), text)
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(2 * time.Millisecond)
	}
}

func TestHost_ServesCurrentPair(t *testing.T) {
	t.Parallel()

	opener := &openerMock{}
	h, p := newTestHost(t, opener)
	p.SetLanguagePair(enDE)
	h.Start(context.Background())

	out, err := translate(t, p, "cat")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "cat@de" {
		t.Errorf("text: got %q, want %q", out, "cat@de")
	}
	if n := len(opener.Sessions()); n != 1 {
		t.Errorf("sessions opened: got %d, want 1", n)
	}
}

func TestHost_ReopensOnPairChange(t *testing.T) {
	t.Parallel()

	opener := &openerMock{}
	h, p := newTestHost(t, opener)
	p.SetLanguagePair(enDE)
	h.Start(context.Background())

	if _, err := translate(t, p, "cat"); err != nil {
		t.Fatalf("first: %v", err)
	}

	p.SetLanguagePair(enFR)
	out, err := translate(t, p, "cat")
	if err != nil {
		t.Fatalf("second: %v", err)
	}
	if out != "cat@fr" {
		t.Errorf("text: got %q, want %q", out, "cat@fr")
	}

	sessions := opener.Sessions()
	if len(sessions) != 2 {
		t.Fatalf("sessions opened: got %d, want 2", len(sessions))
	}
	waitFor(t, "old session closed", sessions[0].Closed)
}

func TestHost_RestartPicksUpQueuedWork(t *testing.T) {
	t.Parallel()

	opener := &openerMock{}
	h, p := newTestHost(t, opener)
	p.SetLanguagePair(enDE)

	h.Start(context.Background())
	waitFor(t, "attached", func() bool { return p.Status().Consumers == 1 })
	h.Stop()
	if h.Running() {
		t.Fatal("Running after Stop: got true")
	}
	if st := p.Status(); st.Consumers != 0 {
		t.Fatalf("consumers after stop: got %d, want 0", st.Consumers)
	}

	type result struct {
		text string
		err  error
	}
	done := make(chan result, 1)
	go func() {
		out, err := translate(t, p, "dog")
		done <- result{out, err}
	}()
	waitFor(t, "queued", func() bool { return p.Status().Queued == 1 })

	h.Start(context.Background())
	select {
	case r := <-done:
		if r.err != nil || r.text != "dog@de" {
			t.Errorf("result: got (%q, %v), want (dog@de, nil)", r.text, r.err)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("queued work was not picked up after restart")
	}
}

func TestHost_StopMidFlightKeepsRequest(t *testing.T) {
	t.Parallel()

	opener := &openerMock{BlockFirst: true}
	h, p := newTestHost(t, opener)
	p.SetLanguagePair(enDE)
	h.Start(context.Background())

	type result struct {
		text string
		err  error
	}
	done := make(chan result, 1)
	go func() {
		out, err := translate(t, p, "cat")
		done <- result{out, err}
	}()
	waitFor(t, "translate in flight", func() bool {
		sessions := opener.Sessions()
		return len(sessions) == 1 && sessions[0].Calls() == 1
	})

	h.Stop()
	if st := p.Status(); st.Queued != 1 || st.Pending != 1 {
		t.Fatalf("status after stop: got %+v, want request kept queued", st)
	}
	select {
	case r := <-done:
		t.Fatalf("request resolved by stop: (%q, %v)", r.text, r.err)
	default:
	}

	h.Start(context.Background())
	select {
	case r := <-done:
		if r.err != nil || r.text != "cat@de" {
			t.Errorf("result: got (%q, %v), want (cat@de, nil)", r.text, r.err)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("interrupted request was not resumed after restart")
	}
	if !opener.Sessions()[0].Closed() {
		t.Error("first session not closed")
	}
}

func TestHost_OpenFailureFailsPendingWork(t *testing.T) {
	t.Parallel()

	openErr := errors.New("connection refused")
	h, p := newTestHost(t, &openerMock{OpenErr: openErr})
	p.SetLanguagePair(enDE)
	h.Start(context.Background())

	_, err := translate(t, p, "cat")
	if !errors.Is(err, openErr) {
		t.Fatalf("error: got %v, want %v", err, openErr)
	}
}

func TestHost_StartStopIdempotent(t *testing.T) {
	t.Parallel()

	h, _ := newTestHost(t, &openerMock{})
	h.Stop()
	h.Start(context.Background())
	h.Start(context.Background())
	if !h.Running() {
		t.Fatal("Running: got false, want true")
	}
	h.Stop()
	h.Stop()
	if h.Running() {
		t.Fatal("Running: got true, want false")
	}
}
