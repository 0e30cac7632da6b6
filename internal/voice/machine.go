// Package voice drives the hands-free assistant loop: wake word detection,
// command capture, processing and spoken replies.
package voice

import (
	"fmt"
	"strings"
	"time"
)

type State string

const (
	StateIdle       State = "idle"
	StateListening  State = "listening"
	StateProcessing State = "processing"
	StateSpeaking   State = "speaking"
)

const (
	SilenceWindow      = 1800 * time.Millisecond
	ErrorRestartDelay  = 1000 * time.Millisecond
	EndRestartDelay    = 300 * time.Millisecond
	SpeechResumeDelay  = 600 * time.Millisecond
	minUtteranceLength = 2
)

var wakeWords = []string{"hola", "barri", "oye"}

// TimerKind names the single pending timer.
type TimerKind string

const (
	TimerSilence TimerKind = "silence"
	TimerRestart TimerKind = "restart"
	TimerResume  TimerKind = "resume"
)

// Event is an input to the machine.
type Event interface{ isEvent() }

type (
	Toggle           struct{}
	Transcript       struct{ Text string }
	TimerFired       struct{ Kind TimerKind }
	ReplyReady       struct{ Text string }
	SpeechFinished   struct{}
	RecognitionEnded struct{}
	RecognitionError struct{ Aborted bool }
)

func (Toggle) isEvent()           {}
func (Transcript) isEvent()       {}
func (TimerFired) isEvent()       {}
func (ReplyReady) isEvent()       {}
func (SpeechFinished) isEvent()   {}
func (RecognitionEnded) isEvent() {}
func (RecognitionError) isEvent() {}

// Effect is work the runner performs after a transition.
type Effect interface{ isEffect() }

type (
	StartRecognition struct{ WakeMode bool }
	StopRecognition  struct{}
	ScheduleTimer    struct {
		Kind  TimerKind
		After time.Duration
	}
	CancelTimer  struct{}
	Process      struct{ Input string }
	Speak        struct{ Text string }
	CancelSpeech struct{}
)

func (StartRecognition) isEffect() {}
func (StopRecognition) isEffect()  {}
func (ScheduleTimer) isEffect()    {}
func (CancelTimer) isEffect()      {}
func (Process) isEffect()          {}
func (Speak) isEffect()            {}
func (CancelSpeech) isEffect()     {}

// Machine is the loop state. The zero value is not usable; call NewMachine.
type Machine struct {
	Name       string
	State      State
	WakeMode   bool
	Transcript string
	// ResumeWake selects the listening mode once the current speech ends.
	ResumeWake bool
}

func NewMachine(name string) Machine {
	return Machine{Name: name, State: StateIdle, WakeMode: true}
}

// Greeting is spoken after a wake word.
func (m Machine) Greeting() string {
	return fmt.Sprintf("Dime %s, ¿en qué puedo ayudarte?", m.Name)
}

// Start begins listening for the wake word.
func (m Machine) Start() (Machine, []Effect) {
	return m.listen(true)
}

// Step applies one event and returns the new state plus the effects to run.
func (m Machine) Step(ev Event) (Machine, []Effect) {
	switch e := ev.(type) {
	case Toggle:
		if m.State == StateIdle || (m.State == StateListening && m.WakeMode) {
			return m.wakeUp()
		}
		m.State = StateIdle
		m.WakeMode = true
		m.Transcript = ""
		return m, []Effect{
			StopRecognition{},
			CancelSpeech{},
			ScheduleTimer{Kind: TimerRestart, After: ErrorRestartDelay},
		}

	case Transcript:
		if m.State != StateListening {
			return m, nil
		}
		text := strings.ToLower(e.Text)
		if m.WakeMode {
			if containsWakeWord(text) {
				return m.wakeUp()
			}
			return m, nil
		}
		m.Transcript = text
		return m, []Effect{ScheduleTimer{Kind: TimerSilence, After: SilenceWindow}}

	case TimerFired:
		return m.onTimer(e.Kind)

	case ReplyReady:
		if m.State != StateProcessing {
			return m, nil
		}
		text := strings.TrimSpace(e.Text)
		if text == "" {
			return m.listen(true)
		}
		m.State = StateSpeaking
		m.ResumeWake = true
		return m, []Effect{Speak{Text: text}}

	case SpeechFinished:
		if m.State != StateSpeaking {
			return m, nil
		}
		m.State = StateIdle
		return m, []Effect{ScheduleTimer{Kind: TimerResume, After: SpeechResumeDelay}}

	case RecognitionEnded:
		if m.State != StateListening {
			return m, nil
		}
		return m, []Effect{ScheduleTimer{Kind: TimerRestart, After: EndRestartDelay}}

	case RecognitionError:
		if e.Aborted || m.State != StateListening {
			return m, nil
		}
		return m, []Effect{ScheduleTimer{Kind: TimerRestart, After: ErrorRestartDelay}}
	}
	return m, nil
}

func (m Machine) onTimer(kind TimerKind) (Machine, []Effect) {
	switch kind {
	case TimerSilence:
		if m.State != StateListening || m.WakeMode {
			return m, nil
		}
		input := strings.TrimSpace(m.Transcript)
		if len([]rune(input)) < minUtteranceLength {
			next, effects := m.listen(true)
			return next, append([]Effect{StopRecognition{}}, effects...)
		}
		m.State = StateProcessing
		m.Transcript = ""
		return m, []Effect{StopRecognition{}, Process{Input: input}}
	case TimerRestart:
		if m.State != StateIdle && m.State != StateListening {
			return m, nil
		}
		return m.listen(m.WakeMode)
	case TimerResume:
		if m.State != StateIdle {
			return m, nil
		}
		return m.listen(m.ResumeWake)
	}
	return m, nil
}

func (m Machine) wakeUp() (Machine, []Effect) {
	m.State = StateSpeaking
	m.WakeMode = false
	m.ResumeWake = false
	m.Transcript = ""
	return m, []Effect{StopRecognition{}, CancelTimer{}, Speak{Text: m.Greeting()}}
}

func (m Machine) listen(wake bool) (Machine, []Effect) {
	m.State = StateListening
	m.WakeMode = wake
	m.Transcript = ""
	return m, []Effect{StartRecognition{WakeMode: wake}}
}

func containsWakeWord(text string) bool {
	for _, w := range wakeWords {
		if strings.Contains(text, w) {
			return true
		}
	}
	return false
}
