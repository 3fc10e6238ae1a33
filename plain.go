package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/dgnsrekt/readaloud/tts"
	"github.com/dgnsrekt/readaloud/ui"
	"github.com/muesli/termenv"
)

// plainRetries is how many times a recoverable failure is retried from the
// word being spoken.
const plainRetries = 1

// ansiColors maps highlight color names to ANSI indexes.
var ansiColors = map[string]string{
	"black":   "0",
	"red":     "1",
	"green":   "2",
	"yellow":  "3",
	"blue":    "4",
	"magenta": "5",
	"cyan":    "6",
	"white":   "7",
}

// runPlain speaks doc and streams it to w one word at a time, the spoken
// word in color when w is a terminal.
func runPlain(ctx context.Context, provider *tts.Provider, doc ui.Document, w io.Writer, color string) error {
	c, ok := ansiColors[color]
	if !ok {
		c = ansiColors["yellow"]
	}
	out := termenv.NewOutput(w)
	fg := out.Color(c)

	type event struct {
		span tts.Span
		done bool
		err  error
	}
	events := make(chan event, 64)
	emit := func(e event) {
		select {
		case events <- e:
		case <-ctx.Done():
		}
	}

	return provider.Use(func(s *tts.Session) error {
		s.RegisterLifecycle(ctx).
			OnHighlight(func(start, end int) {
				emit(event{span: tts.Span{Start: start, End: end}})
			}).
			OnDone(func() {
				emit(event{done: true})
			}).
			OnError(func(message string) {
				err := s.Err()
				if err == nil {
					err = errors.New(message)
				}
				emit(event{err: err})
			})

		// offset is where the current utterance starts in doc.Text.
		offset, resume, retries := 0, 0, 0
		s.Speak(doc.Text)

		printed := 0
		flush := func(end int) {
			if end > printed {
				fmt.Fprint(w, doc.Text[printed:end])
				printed = end
			}
		}

		for {
			select {
			case <-ctx.Done():
				flush(len(doc.Text))
				fmt.Fprintln(w)
				return ctx.Err()

			case e := <-events:
				span := tts.Span{Start: offset + e.span.Start, End: offset + e.span.End}
				switch {
				case e.err != nil:
					if tts.IsRecoverableError(e.err) && retries < plainRetries &&
						strings.TrimSpace(doc.Text[resume:]) != "" {
						retries++
						log.Warn("Speech failed, retrying", "err", e.err, "from", resume)
						offset = resume
						s.Speak(doc.Text[offset:])
						continue
					}
					fmt.Fprintln(w)
					return fmt.Errorf("speech failed: %w", e.err)
				case e.done:
					flush(len(doc.Text))
					fmt.Fprintln(w)
					return nil
				case !e.span.Empty() && span.Valid(doc.Text) && span.Start >= printed:
					flush(span.Start)
					fmt.Fprint(w, out.String(span.Slice(doc.Text)).Foreground(fg).Bold())
					printed = span.End
					resume = span.Start
				}
			}
		}
	})
}
