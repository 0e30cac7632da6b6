package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/barribox/barribox-backend/internal/voice"
)

// lineRecognizer turns stdin lines into transcripts while recognition is on.
// Lines typed while it is stopped are dropped, like speech nobody heard.
type lineRecognizer struct {
	in     io.Reader
	send   func(voice.Event)
	onEOF  func()
	active atomic.Bool
	once   sync.Once
}

func (l *lineRecognizer) Start(bool) error {
	l.once.Do(func() { go l.read() })
	l.active.Store(true)
	return nil
}

func (l *lineRecognizer) Stop() {
	l.active.Store(false)
}

func (l *lineRecognizer) read() {
	scanner := bufio.NewScanner(l.in)
	for scanner.Scan() {
		text := strings.TrimSpace(scanner.Text())
		if text == "" || !l.active.Load() {
			continue
		}
		l.send(voice.Transcript{Text: text})
	}
	if l.onEOF != nil {
		l.onEOF()
	}
}

type printSpeaker struct {
	out io.Writer
	mu  sync.Mutex
}

func (p *printSpeaker) Speak(ctx context.Context, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	_, err := fmt.Fprintf(p.out, "🔊 %s\n", text)
	return err
}
