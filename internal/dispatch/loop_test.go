package dispatch

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rbright/jarvis/internal/fsm"
	"github.com/rbright/jarvis/internal/intent"
	"github.com/rbright/jarvis/internal/ipc"
	"github.com/rbright/jarvis/internal/pipeline"
	"github.com/rbright/jarvis/internal/skills"
	"github.com/stretchr/testify/require"
)

type scriptedListener struct {
	mu      sync.Mutex
	script  []pipeline.Transcript
	calls   int
	blockAt int // 1-based call that blocks until ctx is done; 0 disables
	blocked chan struct{}
}

func (s *scriptedListener) Listen(ctx context.Context) pipeline.Transcript {
	s.mu.Lock()
	s.calls++
	call := s.calls
	var next pipeline.Transcript
	ok := len(s.script) > 0
	if ok {
		next = s.script[0]
		s.script = s.script[1:]
	}
	s.mu.Unlock()

	if call == s.blockAt {
		if s.blocked != nil {
			close(s.blocked)
		}
		<-ctx.Done()
		return pipeline.Transcript{Failure: pipeline.FailureError, Err: ctx.Err()}
	}
	if !ok {
		return pipeline.Transcript{Failure: pipeline.FailureError, Err: pipeline.ErrInputClosed}
	}
	return next
}

type recordingVoice struct{ said []string }

func (v *recordingVoice) Say(_ context.Context, text string) { v.said = append(v.said, text) }

type recordingSkills struct {
	greeted int
	matches []intent.Match
}

func (s *recordingSkills) Greet(context.Context) { s.greeted++ }

func (s *recordingSkills) Handle(_ context.Context, m intent.Match) skills.Outcome {
	s.matches = append(s.matches, m)
	return skills.Outcome{Terminate: m.Intent.Terminates()}
}

func heard(text string) pipeline.Transcript { return pipeline.Transcript{Text: text} }

func newTestLoop(listener pipeline.Source) (*Loop, *recordingVoice, *recordingSkills) {
	voice := &recordingVoice{}
	sk := &recordingSkills{}
	loop := New(Options{
		Listener: listener,
		Voice:    voice,
		Skills:   sk,
		Name:     func() string { return "Jarvis" },
	})
	return loop, voice, sk
}

func TestRunDispatchesUntilExit(t *testing.T) {
	listener := &scriptedListener{script: []pipeline.Transcript{
		heard("What time is it?"),
		heard("Play music for Thunder."),
		heard("exit"),
		heard("what is the date"), // never heard
	}}
	loop, voice, sk := newTestLoop(listener)

	result := loop.Run(context.Background())

	require.NoError(t, result.Err)
	require.True(t, result.Terminated)
	require.Equal(t, fsm.StateStopped, result.State)
	require.Equal(t, 3, result.Handled)
	require.Equal(t, intent.Exit, result.LastIntent)
	require.Equal(t, 3, listener.calls)
	require.Equal(t, 1, sk.greeted)
	require.Empty(t, voice.said)

	require.Equal(t, intent.Time, sk.matches[0].Intent)
	require.Equal(t, intent.PlayMusic, sk.matches[1].Intent)
	require.Equal(t, "for thunder", sk.matches[1].Argument)
	require.False(t, result.FinishedAt.Before(result.StartedAt))
}

func TestRunSpeaksFailureMessagesAndContinues(t *testing.T) {
	listener := &scriptedListener{script: []pipeline.Transcript{
		{Failure: pipeline.FailureTimeout},
		{Failure: pipeline.FailureUnrecognized},
		{Failure: pipeline.FailureUnavailable, Err: errors.New("connection refused")},
		{Failure: pipeline.FailureError, Err: errors.New("device gone")},
		heard("[BLANK_AUDIO]"),
		heard("offline"),
	}}
	loop, voice, sk := newTestLoop(listener)

	result := loop.Run(context.Background())

	require.True(t, result.Terminated)
	require.Equal(t, 5, result.Missed)
	require.Equal(t, 1, result.Handled)
	require.Len(t, sk.matches, 1)
	require.Equal(t, []string{
		"Timeout occurred. Please try again.",
		"Sorry, I did not understand that.",
		"Speech service unavailable.",
		"An error occurred while listening.",
		"Sorry, I did not understand that.",
	}, voice.said)
}

func TestRunUnmatchedTranscriptIsSilent(t *testing.T) {
	listener := &scriptedListener{script: []pipeline.Transcript{heard("sing me a song"), heard("exit")}}
	loop, voice, sk := newTestLoop(listener)

	result := loop.Run(context.Background())

	require.Equal(t, 1, result.Unmatched)
	require.Empty(t, voice.said)
	require.Len(t, sk.matches, 1)
}

func TestRunEndsWhenInputCloses(t *testing.T) {
	loop, _, _ := newTestLoop(&scriptedListener{})
	result := loop.Run(context.Background())

	require.NoError(t, result.Err)
	require.False(t, result.Terminated)
	require.Equal(t, fsm.StateStopped, result.State)
}

func TestRunCancelledContextEndsLoop(t *testing.T) {
	listener := &scriptedListener{blockAt: 1, blocked: make(chan struct{})}
	loop, voice, _ := newTestLoop(listener)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan Result, 1)
	go func() { done <- loop.Run(ctx) }()

	<-listener.blocked
	cancel()

	select {
	case result := <-done:
		require.ErrorIs(t, result.Err, context.Canceled)
		require.Equal(t, fsm.StateStopped, result.State)
		require.Empty(t, voice.said)
	case <-time.After(2 * time.Second):
		t.Fatal("loop did not stop after cancellation")
	}
}

func TestHandleStopInterruptsListening(t *testing.T) {
	listener := &scriptedListener{
		script:  []pipeline.Transcript{heard("tell me a joke")},
		blockAt: 2,
		blocked: make(chan struct{}),
	}
	loop, _, sk := newTestLoop(listener)

	done := make(chan Result, 1)
	go func() { done <- loop.Run(context.Background()) }()

	<-listener.blocked
	status := loop.Handle(context.Background(), ipc.Request{Command: "status"})
	require.True(t, status.OK)
	require.Equal(t, string(fsm.StateListening), status.State)
	require.Equal(t, "Jarvis", status.Name)
	require.Equal(t, 1, status.Handled)
	require.Equal(t, string(intent.Joke), status.LastIntent)

	stop := loop.Handle(context.Background(), ipc.Request{Command: "stop"})
	require.True(t, stop.OK)
	require.Equal(t, "stop requested", stop.Message)

	select {
	case result := <-done:
		require.NoError(t, result.Err)
		require.Equal(t, fsm.StateStopped, result.State)
		require.Len(t, sk.matches, 1)
	case <-time.After(2 * time.Second):
		t.Fatal("loop did not stop after IPC stop")
	}

	again := loop.Handle(context.Background(), ipc.Request{Command: "stop"})
	require.False(t, again.OK)
	require.Contains(t, again.Error, "already stopped")
}

func TestStopBeforeRunSkipsGreeting(t *testing.T) {
	listener := &scriptedListener{}
	loop, _, sk := newTestLoop(listener)

	resp := loop.Handle(context.Background(), ipc.Request{Command: "stop"})
	require.True(t, resp.OK)

	result := loop.Run(context.Background())
	require.Equal(t, fsm.StateStopped, result.State)
	require.Zero(t, sk.greeted)
	require.Zero(t, listener.calls)
}

func TestHandleUnknownCommand(t *testing.T) {
	loop, _, _ := newTestLoop(&scriptedListener{})
	resp := loop.Handle(context.Background(), ipc.Request{Command: "toggle"})
	require.False(t, resp.OK)
	require.Equal(t, string(fsm.StateIdle), resp.State)
	require.Contains(t, resp.Error, "unknown command")
}

func TestFailureMessage(t *testing.T) {
	require.Equal(t, "An error occurred while listening.", FailureMessage(pipeline.FailureError))
	require.Equal(t, "Timeout occurred. Please try again.", FailureMessage(pipeline.FailureTimeout))
}

// slowSkills parks inside Handle until release is closed, then records
// whether its context was still live.
type slowSkills struct {
	entered chan struct{}
	release chan struct{}
	ctxErr  error
	handled int
}

func (s *slowSkills) Greet(context.Context) {}

func (s *slowSkills) Handle(ctx context.Context, _ intent.Match) skills.Outcome {
	s.handled++
	close(s.entered)
	<-s.release
	s.ctxErr = ctx.Err()
	return skills.Outcome{}
}

func TestStopDuringHandlerLetsItFinish(t *testing.T) {
	listener := &scriptedListener{script: []pipeline.Transcript{heard("play music"), heard("what time is it")}}
	sk := &slowSkills{entered: make(chan struct{}), release: make(chan struct{})}
	loop := New(Options{Listener: listener, Voice: &recordingVoice{}, Skills: sk})

	done := make(chan Result, 1)
	go func() { done <- loop.Run(context.Background()) }()

	<-sk.entered
	require.Equal(t, string(fsm.StateDispatching), loop.Handle(context.Background(), ipc.Request{Command: "status"}).State)
	stop := loop.Handle(context.Background(), ipc.Request{Command: "stop"})
	require.True(t, stop.OK)
	close(sk.release)

	select {
	case result := <-done:
		require.NoError(t, result.Err)
		require.NoError(t, sk.ctxErr)
		require.Equal(t, 1, sk.handled)
		require.Equal(t, 1, result.Handled)
		require.Equal(t, fsm.StateStopped, result.State)
	case <-time.After(2 * time.Second):
		t.Fatal("loop did not stop after the handler returned")
	}

	listener.mu.Lock()
	defer listener.mu.Unlock()
	require.Equal(t, 1, listener.calls)
}
