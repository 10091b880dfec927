package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/verte-zerg/notedrill/internal/drill"
	"github.com/verte-zerg/notedrill/internal/midiio"
	"github.com/verte-zerg/notedrill/internal/model"
	"github.com/verte-zerg/notedrill/internal/notes"
	"github.com/verte-zerg/notedrill/internal/stats"
)

// consoleIO prints targets, feedback and window reports line by line.
type consoleIO struct {
	w        io.Writer
	player   drill.Presenter
	showNote bool
	logger   *zap.Logger
}

func (c *consoleIO) Present(ctx context.Context, n notes.Note) error {
	if c.showNote || c.player == nil {
		c.printf("Target: %s (%.2f Hz)\n", n.Name, n.Frequency())
	} else {
		c.printf("Listen...\n")
	}
	if c.player == nil {
		return nil
	}
	return c.player.Present(ctx, n)
}

func (c *consoleIO) Report(_ context.Context, s drill.WindowStats) {
	if err := stats.RenderWindow(c.w, s); err != nil {
		c.logger.Warn("failed to write report", zap.Error(err))
	}
}

func (c *consoleIO) observe(rec drill.AttemptRecord) {
	if rec.Correct {
		c.printf("Correct!\n")
		return
	}
	c.printf("Wrong! You played %s\n", rec.Attempted.Name)
}

func (c *consoleIO) printf(format string, args ...any) {
	if _, err := fmt.Fprintf(c.w, format, args...); err != nil {
		c.logger.Debug("failed to write output", zap.Error(err))
	}
}

// parseLine maps one console line to an event. ok is false for blank lines
// and unknown input.
func parseLine(line string, scale notes.Scale, at time.Time) (drill.Event, bool) {
	line = strings.TrimSpace(line)
	switch strings.ToLower(line) {
	case "":
		return drill.Event{}, false
	case "r", "replay":
		return drill.Replay(), true
	}
	n, ok := scale.ByName(line)
	if !ok {
		parsed, err := notes.Parse(line)
		if err != nil {
			return drill.Event{}, false
		}
		n = parsed
	}
	return drill.Event{Kind: drill.EventAttempt, Note: n, At: at}, true
}

// readLines feeds console answers into inbox until r is exhausted or ctx
// is done, then closes it. Lines are stamped as they are read, so answers
// typed while a note plays are dropped by the session.
func readLines(ctx context.Context, r io.Reader, scale notes.Scale, inbox *drill.Inbox, w io.Writer) {
	defer inbox.Close()
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return
		}
		ev, ok := parseLine(scanner.Text(), scale, time.Now())
		if !ok {
			if strings.TrimSpace(scanner.Text()) != "" {
				if _, err := fmt.Fprintf(w, "Unknown note %q (try one of %s)\n", scanner.Text(), scale.String()); err != nil {
					// Best-effort hint.
					_ = err
				}
			}
			continue
		}
		inbox.Deliver(ev)
	}
}

// plainDrill holds what a console run needs besides its event source.
type plainDrill struct {
	params      drill.Params
	selector    *drill.Selector
	console     *consoleIO
	awaitDevice bool
	rec         *recorder
	logger      *zap.Logger
}

// awaitConfirmation consumes events until the first attempt. It reports
// false when the stream ends or ctx is done first.
func awaitConfirmation(ctx context.Context, events <-chan drill.Event) bool {
	for {
		select {
		case <-ctx.Done():
			return false
		case ev, ok := <-events:
			if !ok {
				return false
			}
			if ev.Kind == drill.EventAttempt {
				return true
			}
		}
	}
}

// run drives one session over events and prints a closing summary.
func (d plainDrill) run(ctx context.Context, events <-chan drill.Event) error {
	if d.awaitDevice {
		d.console.printf("Play any note to confirm the connection.\n")
		if !awaitConfirmation(ctx, events) {
			return nil
		}
		d.console.printf("Connection confirmed.\n")
	}

	session := drill.NewSession(d.params, d.selector, d.console, d.console,
		drill.WithLogger(d.logger),
		drill.WithObserver(func(r drill.AttemptRecord) {
			d.console.observe(r)
			d.rec.observe(r)
		}))
	if err := session.Run(ctx, events); err != nil && ctx.Err() == nil {
		return fmt.Errorf("failed to run drill: %w", err)
	}
	run, _ := d.rec.snapshot()
	d.console.printf("\nAttempts: %d  Correct: %d  Wrong: %d\n", run.Correct+run.Incorrect, run.Correct, run.Incorrect)
	return nil
}

func runPlain(parent context.Context, cfg model.Config, params drill.Params, selector *drill.Selector, player *midiio.Player, rec *recorder, logger *zap.Logger) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt)
	defer stop()

	console := &consoleIO{w: os.Stdout, showNote: cfg.ShowNote, logger: logger}
	if player != nil {
		console.player = player
	}
	d := plainDrill{
		params:      params,
		selector:    selector,
		console:     console,
		awaitDevice: cfg.MIDIIn != "",
		rec:         rec,
		logger:      logger,
	}

	inbox := drill.NewInbox(drill.DefaultInboxSize)
	if cfg.MIDIIn != "" {
		listener, err := midiio.Listen(cfg.MIDIIn, func(ev drill.Event) {
			if !inbox.Deliver(ev) {
				logger.Debug("dropping MIDI event", zap.String("note", ev.Note.Name))
			}
		}, logger)
		if err != nil {
			return fmt.Errorf("failed to open MIDI input: %w", err)
		}
		defer listener.Stop()
		console.printf("Connected to %s.\n", listener.Name())
	} else {
		console.printf("Type a note name (%s) and press enter, r to replay, ctrl+d to quit.\n", params.Scale.String())
		go readLines(ctx, os.Stdin, params.Scale, inbox, os.Stdout)
	}
	return d.run(ctx, inbox.Events())
}
