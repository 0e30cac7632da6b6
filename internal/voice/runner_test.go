package voice

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"go.uber.org/goleak"
)

type fakeTimer struct {
	clock   *fakeClock
	at      time.Time
	fn      func()
	stopped bool
}

func (t *fakeTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	was := !t.stopped
	t.stopped = true
	return was
}

type fakeClock struct {
	mu     sync.Mutex
	now    time.Time
	timers []*fakeTimer
}

func (c *fakeClock) AfterFunc(d time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTimer{clock: c, at: c.now.Add(d), fn: f}
	c.timers = append(c.timers, t)
	return t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	var due []*fakeTimer
	var pending []*fakeTimer
	for _, t := range c.timers {
		switch {
		case t.stopped:
		case !t.at.After(c.now):
			t.stopped = true
			due = append(due, t)
		default:
			pending = append(pending, t)
		}
	}
	c.timers = pending
	c.mu.Unlock()

	sort.Slice(due, func(i, j int) bool { return due[i].at.Before(due[j].at) })
	for _, t := range due {
		t.fn()
	}
}

type fakeRecognizer struct {
	mu     sync.Mutex
	starts []bool
	stops  int
	err    error
}

func (r *fakeRecognizer) Start(wake bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.starts = append(r.starts, wake)
	return r.err
}

func (r *fakeRecognizer) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stops++
}

type fakeSpeaker struct {
	mu    sync.Mutex
	said  []string
	block bool
}

func (s *fakeSpeaker) Speak(ctx context.Context, text string) error {
	s.mu.Lock()
	s.said = append(s.said, text)
	block := s.block
	s.mu.Unlock()
	if block {
		<-ctx.Done()
		return ctx.Err()
	}
	return nil
}

func (s *fakeSpeaker) spoken() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.said...)
}

type harness struct {
	runner  *Runner
	clock   *fakeClock
	rec     *fakeRecognizer
	speaker *fakeSpeaker
	states  chan Machine
	cancel  context.CancelFunc
	done    chan error
}

func startHarness(t *testing.T, speaker *fakeSpeaker, process Processor) *harness {
	t.Helper()
	h := &harness{
		clock:   &fakeClock{now: time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)},
		rec:     &fakeRecognizer{},
		speaker: speaker,
		states:  make(chan Machine, 256),
		done:    make(chan error, 1),
	}
	runner, err := NewRunner("Jordi", h.rec, speaker, process,
		WithClock(h.clock),
		WithStateHook(func(m Machine) { h.states <- m }),
	)
	if err != nil {
		t.Fatalf("new runner: %v", err)
	}
	h.runner = runner
	ctx, cancel := context.WithCancel(context.Background())
	h.cancel = cancel
	go func() { h.done <- runner.Run(ctx) }()
	return h
}

func (h *harness) waitFor(t *testing.T, match func(Machine) bool) Machine {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case m := <-h.states:
			if match(m) {
				return m
			}
		case <-deadline:
			t.Fatal("timed out waiting for state")
		}
	}
}

func (h *harness) stop(t *testing.T) {
	t.Helper()
	h.cancel()
	select {
	case err := <-h.done:
		if err != nil {
			t.Fatalf("run: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("runner did not stop")
	}
}

func isState(s State, wake bool) func(Machine) bool {
	return func(m Machine) bool { return m.State == s && m.WakeMode == wake }
}

func TestRunnerFullConversation(t *testing.T) {
	defer goleak.VerifyNone(t)

	var inputs []string
	var mu sync.Mutex
	h := startHarness(t, &fakeSpeaker{}, func(_ context.Context, input string) (string, error) {
		mu.Lock()
		inputs = append(inputs, input)
		mu.Unlock()
		return "Ve al Centre, Jordi.", nil
	})

	h.waitFor(t, isState(StateListening, true))
	h.runner.Send(Transcript{Text: "Hola Barri"})
	h.waitFor(t, isState(StateIdle, false))

	h.clock.Advance(SpeechResumeDelay)
	h.waitFor(t, isState(StateListening, false))

	h.runner.Send(Transcript{Text: "qué hago"})
	h.waitFor(t, func(m Machine) bool { return m.Transcript == "qué hago" })
	h.clock.Advance(SilenceWindow)

	h.waitFor(t, func(m Machine) bool { return m.State == StateIdle && m.ResumeWake })
	h.clock.Advance(SpeechResumeDelay)
	h.waitFor(t, isState(StateListening, true))

	h.stop(t)

	mu.Lock()
	defer mu.Unlock()
	if len(inputs) != 1 || inputs[0] != "qué hago" {
		t.Fatalf("unexpected processed inputs %v", inputs)
	}
	said := h.speaker.spoken()
	if len(said) != 2 || said[0] != "Dime Jordi, ¿en qué puedo ayudarte?" || said[1] != "Ve al Centre, Jordi." {
		t.Fatalf("unexpected speech %v", said)
	}
}

func TestRunnerReplacesSilenceTimer(t *testing.T) {
	defer goleak.VerifyNone(t)

	processed := make(chan string, 4)
	h := startHarness(t, &fakeSpeaker{}, func(_ context.Context, input string) (string, error) {
		processed <- input
		return "", nil
	})
	h.waitFor(t, isState(StateListening, true))
	h.runner.Send(Toggle{})
	h.waitFor(t, isState(StateIdle, false))
	h.clock.Advance(SpeechResumeDelay)
	h.waitFor(t, isState(StateListening, false))

	h.runner.Send(Transcript{Text: "lleva"})
	h.waitFor(t, func(m Machine) bool { return m.Transcript == "lleva" })
	h.clock.Advance(time.Second)
	h.runner.Send(Transcript{Text: "lleva el paquete"})
	h.waitFor(t, func(m Machine) bool { return m.Transcript == "lleva el paquete" })

	h.clock.Advance(time.Second)
	select {
	case input := <-processed:
		t.Fatalf("silence window fired early with %q", input)
	case <-time.After(50 * time.Millisecond):
	}

	h.clock.Advance(SilenceWindow)
	select {
	case input := <-processed:
		if input != "lleva el paquete" {
			t.Fatalf("unexpected input %q", input)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("expected processing after silence")
	}
	// empty reply returns to wake listening
	h.waitFor(t, isState(StateListening, true))
	h.stop(t)
}

func TestRunnerStopsWhileSpeaking(t *testing.T) {
	defer goleak.VerifyNone(t)

	h := startHarness(t, &fakeSpeaker{block: true}, func(context.Context, string) (string, error) {
		return "", errors.New("unused")
	})
	h.waitFor(t, isState(StateListening, true))
	h.runner.Send(Transcript{Text: "oye"})
	h.waitFor(t, isState(StateSpeaking, false))
	h.stop(t)

	h.rec.mu.Lock()
	defer h.rec.mu.Unlock()
	if h.rec.stops < 2 {
		t.Fatalf("expected recognition stopped on wake and shutdown, got %d", h.rec.stops)
	}
}

func TestRunnerRetriesFailedRecognitionStart(t *testing.T) {
	defer goleak.VerifyNone(t)

	h := startHarness(t, &fakeSpeaker{}, func(context.Context, string) (string, error) { return "", nil })
	h.rec.mu.Lock()
	h.rec.err = errors.New("mic busy")
	h.rec.mu.Unlock()

	h.waitFor(t, isState(StateListening, true))
	h.runner.Send(RecognitionEnded{})
	h.waitFor(t, isState(StateListening, true))
	h.clock.Advance(EndRestartDelay)
	h.waitFor(t, isState(StateListening, true))

	h.rec.mu.Lock()
	h.rec.err = nil
	h.rec.mu.Unlock()
	h.clock.Advance(ErrorRestartDelay)
	h.waitFor(t, isState(StateListening, true))
	h.stop(t)

	h.rec.mu.Lock()
	defer h.rec.mu.Unlock()
	if len(h.rec.starts) < 3 {
		t.Fatalf("expected retried starts, got %v", h.rec.starts)
	}
}

func TestNewRunnerValidates(t *testing.T) {
	if _, err := NewRunner("x", nil, &fakeSpeaker{}, func(context.Context, string) (string, error) { return "", nil }); err == nil {
		t.Fatal("expected recognizer error")
	}
}
