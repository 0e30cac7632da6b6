package voice

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/barribox/barribox-backend/pkg/logger"
)

// Recognizer listens for speech and reports through Runner.Send.
type Recognizer interface {
	Start(wakeMode bool) error
	Stop()
}

// Speaker plays a reply. Speak blocks until playback ends or ctx is done.
type Speaker interface {
	Speak(ctx context.Context, text string) error
}

// Processor answers a captured utterance.
type Processor func(ctx context.Context, input string) (string, error)

// Timer is the handle returned by Clock.AfterFunc.
type Timer interface {
	Stop() bool
}

type Clock interface {
	AfterFunc(d time.Duration, f func()) Timer
}

type realClock struct{}

func (realClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

type RunnerOption func(*Runner)

func WithClock(c Clock) RunnerOption {
	return func(r *Runner) {
		if c != nil {
			r.clock = c
		}
	}
}

// WithStateHook is called from the loop goroutine after every transition.
func WithStateHook(fn func(Machine)) RunnerOption {
	return func(r *Runner) { r.onState = fn }
}

func WithLogger(l *logger.Logger) RunnerOption {
	return func(r *Runner) {
		if l != nil {
			r.logg = l
		}
	}
}

type timerFired struct {
	kind TimerKind
	seq  uint64
}

func (timerFired) isEvent() {}

// Runner owns one machine, at most one pending timer and the goroutines
// running speech and processing.
type Runner struct {
	machine    Machine
	recognizer Recognizer
	speaker    Speaker
	process    Processor
	clock      Clock
	logg       *logger.Logger
	onState    func(Machine)

	events chan Event
	done   chan struct{}

	timer    Timer
	timerSeq uint64

	workCtx    context.Context
	cancelWork context.CancelFunc
	speakStop  context.CancelFunc
	wg         sync.WaitGroup
}

func NewRunner(name string, recognizer Recognizer, speaker Speaker, process Processor, opts ...RunnerOption) (*Runner, error) {
	if recognizer == nil {
		return nil, fmt.Errorf("recognizer required")
	}
	if speaker == nil {
		return nil, fmt.Errorf("speaker required")
	}
	if process == nil {
		return nil, fmt.Errorf("processor required")
	}
	r := &Runner{
		machine:    NewMachine(name),
		recognizer: recognizer,
		speaker:    speaker,
		process:    process,
		clock:      realClock{},
		logg:       logger.Nop(),
		events:     make(chan Event, 16),
		done:       make(chan struct{}),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Send queues an event. It drops the event once the loop has stopped.
func (r *Runner) Send(ev Event) {
	select {
	case r.events <- ev:
	case <-r.done:
	}
}

// Run processes events until ctx is cancelled, then stops recognition,
// cancels the pending timer and waits for in-flight work.
func (r *Runner) Run(ctx context.Context) error {
	r.workCtx, r.cancelWork = context.WithCancel(ctx)
	defer func() {
		r.stopTimer()
		r.recognizer.Stop()
		r.cancelWork()
		close(r.done)
		r.wg.Wait()
	}()

	next, effects := r.machine.Start()
	r.apply(next, effects)

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev := <-r.events:
			if tf, ok := ev.(timerFired); ok {
				if tf.seq != r.timerSeq {
					continue
				}
				r.timer = nil
				ev = TimerFired{Kind: tf.kind}
			}
			next, effects := r.machine.Step(ev)
			r.apply(next, effects)
		}
	}
}

func (r *Runner) apply(next Machine, effects []Effect) {
	if next.State != r.machine.State {
		r.logg.Debug(r.logg.WithFields(context.Background(), map[string]any{
			"from": string(r.machine.State),
			"to":   string(next.State),
			"wake": next.WakeMode,
		}), "voice.transition")
	}
	r.machine = next
	for _, effect := range effects {
		r.run(effect)
	}
	if r.onState != nil {
		r.onState(r.machine)
	}
}

func (r *Runner) run(effect Effect) {
	switch e := effect.(type) {
	case StartRecognition:
		if err := r.recognizer.Start(e.WakeMode); err != nil {
			r.logg.Warn(r.logg.WithField(context.Background(), "error", err.Error()), "voice.recognition_start_failed")
			r.schedule(TimerRestart, ErrorRestartDelay)
		}
	case StopRecognition:
		r.recognizer.Stop()
	case ScheduleTimer:
		r.schedule(e.Kind, e.After)
	case CancelTimer:
		r.stopTimer()
	case CancelSpeech:
		if r.speakStop != nil {
			r.speakStop()
			r.speakStop = nil
		}
	case Speak:
		ctx, cancel := context.WithCancel(r.workCtx)
		r.speakStop = cancel
		r.spawn(func() {
			defer cancel()
			if err := r.speaker.Speak(ctx, e.Text); err != nil && ctx.Err() == nil {
				r.logg.Warn(r.logg.WithField(ctx, "error", err.Error()), "voice.speak_failed")
			}
			if ctx.Err() == nil {
				r.Send(SpeechFinished{})
			}
		})
	case Process:
		r.spawn(func() {
			reply, err := r.process(r.workCtx, e.Input)
			if err != nil {
				r.logg.Error(r.workCtx, "voice.process_failed", err)
				reply = ""
			}
			r.Send(ReplyReady{Text: reply})
		})
	}
}

func (r *Runner) spawn(fn func()) {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		fn()
	}()
}

func (r *Runner) schedule(kind TimerKind, after time.Duration) {
	r.stopTimer()
	r.timerSeq++
	seq := r.timerSeq
	r.timer = r.clock.AfterFunc(after, func() {
		r.Send(timerFired{kind: kind, seq: seq})
	})
}

func (r *Runner) stopTimer() {
	if r.timer != nil {
		r.timer.Stop()
		r.timer = nil
	}
	r.timerSeq++
}
