// Package dispatch runs the listen, classify and handle cycle of the assistant.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/rbright/jarvis/internal/fsm"
	"github.com/rbright/jarvis/internal/indicator"
	"github.com/rbright/jarvis/internal/intent"
	"github.com/rbright/jarvis/internal/ipc"
	"github.com/rbright/jarvis/internal/pipeline"
	"github.com/rbright/jarvis/internal/skills"
	"github.com/rbright/jarvis/internal/transcript"
)

// Speaker voices loop-level messages.
type Speaker interface {
	Say(ctx context.Context, text string)
}

// Skills greets once and handles classified commands.
type Skills interface {
	Greet(ctx context.Context)
	Handle(ctx context.Context, m intent.Match) skills.Outcome
}

// Result is the complete lifecycle output returned by one Run invocation.
type Result struct {
	State      fsm.State
	Handled    int
	Missed     int
	Unmatched  int
	LastIntent intent.Intent
	Terminated bool
	Err        error
	StartedAt  time.Time
	FinishedAt time.Time
}

// Options wires the loop's collaborators. Listener, Voice and Skills are required.
type Options struct {
	Logger     *slog.Logger
	Listener   pipeline.Source
	Voice      Speaker
	Skills     Skills
	Indicator  indicator.Controller
	Classifier *intent.Classifier
	Name       func() string
}

// Loop owns the assistant lifecycle state.
type Loop struct {
	logger     *slog.Logger
	listener   pipeline.Source
	voice      Speaker
	skills     Skills
	indicator  indicator.Controller
	classifier *intent.Classifier
	name       func() string

	mu            sync.RWMutex
	state         fsm.State
	handled       int
	lastIntent    intent.Intent
	cancelListen  context.CancelFunc
	stopRequested bool
}

// New constructs a loop with safe defaults for optional collaborators.
func New(opts Options) *Loop {
	if opts.Indicator == nil {
		opts.Indicator = indicator.Noop{}
	}
	if opts.Classifier == nil {
		opts.Classifier = intent.NewClassifier(nil)
	}
	if opts.Name == nil {
		opts.Name = func() string { return "" }
	}
	return &Loop{
		logger:     opts.Logger,
		listener:   opts.Listener,
		voice:      opts.Voice,
		skills:     opts.Skills,
		indicator:  opts.Indicator,
		classifier: opts.Classifier,
		name:       opts.Name,
		state:      fsm.StateIdle,
	}
}

// FailureMessage is the apology spoken for a failed listen cycle.
func FailureMessage(f pipeline.Failure) string {
	switch f {
	case pipeline.FailureTimeout:
		return "Timeout occurred. Please try again."
	case pipeline.FailureUnrecognized:
		return "Sorry, I did not understand that."
	case pipeline.FailureUnavailable:
		return "Speech service unavailable."
	default:
		return "An error occurred while listening."
	}
}

// State returns the current FSM state snapshot.
func (l *Loop) State() fsm.State {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.state
}

// transition applies one FSM event to the loop state.
func (l *Loop) transition(event fsm.Event) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	next, err := fsm.Transition(l.state, event)
	if err != nil {
		return err
	}
	l.state = next
	return nil
}

// Run greets, then serves commands until a terminating intent, a stop
// request, end of typed input, or cancellation of ctx.
func (l *Loop) Run(ctx context.Context) Result {
	result := Result{StartedAt: time.Now()}

	if err := l.transition(fsm.EventStart); err != nil {
		result.State = l.State()
		result.Err = err
		result.FinishedAt = time.Now()
		return result
	}

	defer func() {
		cleanupCtx, cleanupCancel := context.WithTimeout(context.Background(), 800*time.Millisecond)
		defer cleanupCancel()
		l.indicator.Hide(cleanupCtx)
	}()

	if !l.stopping() {
		l.skills.Greet(ctx)
	}

	for !l.stopping() && ctx.Err() == nil {
		l.indicator.ShowListening(ctx)
		heard := l.listen(ctx)
		if ctx.Err() != nil || l.stopping() {
			break
		}
		if errors.Is(heard.Err, pipeline.ErrInputClosed) {
			l.debug("input closed")
			break
		}

		text := transcript.Normalize(heard.Text)
		if !heard.Failed() && text == "" {
			heard.Failure = pipeline.FailureUnrecognized
		}
		if heard.Failed() {
			result.Missed++
			l.logFailure(heard)
			l.indicator.ShowError(ctx, "")
			l.voice.Say(ctx, FailureMessage(heard.Failure))
			_ = l.transition(fsm.EventMissed)
			continue
		}

		match := l.classifier.Classify(text)
		if !match.Matched() {
			result.Unmatched++
			l.debug("no intent matched", "transcript", text)
			l.indicator.Hide(ctx)
			_ = l.transition(fsm.EventMissed)
			continue
		}

		l.indicator.ShowRecognizing(ctx)
		if err := l.transition(fsm.EventHeard); err != nil {
			result.Err = err
			break
		}
		l.info("dispatching intent",
			"intent", string(match.Intent),
			"trigger", match.Trigger,
			"argument", match.Argument,
			"device", heard.Device,
			"stt_latency_ms", heard.Latency.Milliseconds(),
		)

		outcome := l.skills.Handle(ctx, match)

		l.mu.Lock()
		l.handled++
		l.lastIntent = match.Intent
		l.mu.Unlock()
		result.Handled++
		result.LastIntent = match.Intent

		if outcome.Terminate {
			result.Terminated = true
			break
		}
		if err := l.transition(fsm.EventHandled); err != nil {
			result.Err = err
			break
		}
	}

	_ = l.transition(fsm.EventStop)
	if result.Err == nil && ctx.Err() != nil {
		result.Err = ctx.Err()
	}
	result.State = l.State()
	result.FinishedAt = time.Now()
	return result
}

// Handle serves IPC commands for the running loop.
func (l *Loop) Handle(_ context.Context, req ipc.Request) ipc.Response {
	switch req.Command {
	case ipc.CommandStatus:
		l.mu.RLock()
		defer l.mu.RUnlock()
		return ipc.Response{
			OK:         true,
			State:      string(l.state),
			Message:    "status",
			Name:       l.name(),
			Handled:    l.handled,
			LastIntent: string(l.lastIntent),
		}
	case ipc.CommandStop:
		return l.requestStop()
	default:
		return ipc.Response{OK: false, State: string(l.State()), Error: fmt.Sprintf("unknown command: %s", req.Command)}
	}
}

// listen runs one Listen under a context that a stop request may cancel.
func (l *Loop) listen(ctx context.Context) pipeline.Transcript {
	listenCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	l.mu.Lock()
	if l.stopRequested {
		l.mu.Unlock()
		return pipeline.Transcript{Failure: pipeline.FailureError, Err: context.Canceled}
	}
	l.cancelListen = cancel
	l.mu.Unlock()

	heard := l.listener.Listen(listenCtx)

	l.mu.Lock()
	l.cancelListen = nil
	l.mu.Unlock()
	return heard
}

func (l *Loop) stopping() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.stopRequested
}

// requestStop interrupts a pending listen. A running handler finishes first;
// the loop checks the flag once it returns.
func (l *Loop) requestStop() ipc.Response {
	l.mu.Lock()
	defer l.mu.Unlock()

	state := l.state
	if state.Terminal() {
		return ipc.Response{OK: false, State: string(state), Error: "already stopped"}
	}
	if l.stopRequested {
		return ipc.Response{OK: true, State: string(state), Message: "stop already requested"}
	}
	l.stopRequested = true
	if l.cancelListen != nil {
		l.cancelListen()
	}
	return ipc.Response{OK: true, State: string(state), Message: "stop requested"}
}

func (l *Loop) logFailure(heard pipeline.Transcript) {
	if l.logger == nil {
		return
	}
	args := []any{"failure", heard.Failure.String(), "device", heard.Device, "bytes_captured", heard.BytesCaptured}
	if heard.Err != nil {
		args = append(args, "error", heard.Err.Error())
	}
	if heard.Failure == pipeline.FailureError || heard.Failure == pipeline.FailureUnavailable {
		l.logger.Warn("listen failed", args...)
		return
	}
	l.logger.Debug("listen failed", args...)
}

func (l *Loop) info(msg string, args ...any) {
	if l.logger != nil {
		l.logger.Info(msg, args...)
	}
}

func (l *Loop) debug(msg string, args ...any) {
	if l.logger != nil {
		l.logger.Debug(msg, args...)
	}
}
