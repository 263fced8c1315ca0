// Package skills implements one handler per assistant intent. Handlers own
// their failure handling: every problem is logged and turned into a spoken
// apology, so callers only learn whether the loop should end.
package skills

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/rbright/jarvis/internal/intent"
	"github.com/rbright/jarvis/internal/music"
	"github.com/rbright/jarvis/internal/pipeline"
	"github.com/rbright/jarvis/internal/screenshot"
	"github.com/rbright/jarvis/internal/transcript"
)

// Speaker is the speech output surface handlers talk through.
type Speaker interface {
	Say(ctx context.Context, text string)
	Speak(ctx context.Context, text string)
	Announce(ctx context.Context, spoken string, printed string)
}

// Names persists the assistant's name.
type Names interface {
	Load() string
	Save(name string) error
}

// Encyclopedia returns a short article summary for a query.
type Encyclopedia interface {
	Summary(ctx context.Context, query string) (string, error)
}

// Songs picks a track from the music library.
type Songs interface {
	Pick(query string) (song string, path string, err error)
}

// Opener hands files and URLs to the desktop.
type Opener interface {
	Open(ctx context.Context, target string) error
}

// Power runs the system power commands.
type Power interface {
	Shutdown(ctx context.Context) error
	Restart(ctx context.Context) error
}

// Jokes supplies one joke per call.
type Jokes interface {
	Random() string
}

// Outcome tells the loop what to do after a handler returns.
type Outcome struct {
	Terminate bool
}

// Handlers wires every intent to its capability adapters.
type Handlers struct {
	Voice          Speaker
	Listener       pipeline.Source
	Identity       Names
	Lookup         Encyclopedia
	Music          Songs
	Opener         Opener
	Power          Power
	Screenshot     screenshot.Capturer
	ScreenshotPath string
	Jokes          Jokes
	YouTubeURL     string
	GoogleURL      string
	Now            func() time.Time
	Logger         *slog.Logger
}

// Handle runs the handler for m. Unrecognized matches do nothing.
func (h *Handlers) Handle(ctx context.Context, m intent.Match) Outcome {
	switch m.Intent {
	case intent.Time:
		h.tellTime(ctx)
	case intent.Date:
		h.tellDate(ctx)
	case intent.Lookup:
		h.lookup(ctx, m.Argument)
	case intent.PlayMusic:
		h.playMusic(ctx, m.Argument)
	case intent.OpenYouTube:
		h.openSite(ctx, "YouTube", h.YouTubeURL)
	case intent.OpenGoogle:
		h.openSite(ctx, "Google", h.GoogleURL)
	case intent.Rename:
		h.rename(ctx)
	case intent.Screenshot:
		h.screenshot(ctx)
	case intent.Joke:
		h.Voice.Say(ctx, h.Jokes.Random())
	case intent.Shutdown:
		h.Voice.Say(ctx, "Shutting down the system.")
		if err := h.Power.Shutdown(ctx); err != nil {
			h.warn("shutdown command failed", err)
		}
	case intent.Restart:
		h.Voice.Say(ctx, "Restarting system.")
		if err := h.Power.Restart(ctx); err != nil {
			h.warn("restart command failed", err)
		}
	case intent.Exit:
		h.Voice.Say(ctx, "Going offline, goodbye!")
	default:
		return Outcome{}
	}
	return Outcome{Terminate: m.Intent.Terminates()}
}

func (h *Handlers) tellTime(ctx context.Context) {
	h.Voice.Say(ctx, "The current time is "+h.now().Format("03:04:05 PM"))
}

func (h *Handlers) tellDate(ctx context.Context) {
	now := h.now()
	h.Voice.Announce(ctx,
		"The current date is "+now.Format("2 January 2006"),
		"The current date is "+now.Format("2/1/2006"),
	)
}

func (h *Handlers) lookup(ctx context.Context, query string) {
	h.Voice.Say(ctx, "Searching Wikipedia...")
	summary, err := h.Lookup.Summary(ctx, query)
	if err != nil {
		h.warn("wikipedia lookup failed", err, "query", query)
		h.Voice.Say(ctx, "I couldn't find anything on Wikipedia.")
		return
	}
	h.Voice.Say(ctx, summary)
}

func (h *Handlers) playMusic(ctx context.Context, filter string) {
	song, path, err := h.Music.Pick(filter)
	switch {
	case errors.Is(err, music.ErrNoSongs):
		h.Voice.Say(ctx, "No songs found.")
		return
	case err != nil:
		h.warn("music library unavailable", err)
		h.Voice.Say(ctx, "Music folder not found.")
		return
	}

	if err := h.Opener.Open(ctx, path); err != nil {
		h.warn("music playback failed", err, "song", song)
		h.Voice.Say(ctx, "I couldn't play "+song+".")
		return
	}
	h.Voice.Say(ctx, "Playing "+song)
}

func (h *Handlers) openSite(ctx context.Context, name string, url string) {
	h.Voice.Say(ctx, "Opening "+name+".")
	if err := h.Opener.Open(ctx, url); err != nil {
		h.warn("browser launch failed", err, "url", url)
		h.Voice.Say(ctx, "I couldn't open the browser.")
	}
}

func (h *Handlers) rename(ctx context.Context) {
	h.Voice.Say(ctx, "What would you like to name me?")

	heard := h.Listener.Listen(ctx)
	name := transcript.Normalize(heard.Text)
	if heard.Failed() || name == "" {
		if heard.Err != nil {
			h.warn("rename listen failed", heard.Err, "failure", heard.Failure.String())
		}
		h.Voice.Say(ctx, "Sorry, I couldn't catch that.")
		return
	}

	if err := h.Identity.Save(name); err != nil {
		h.warn("saving assistant name failed", err)
		h.Voice.Say(ctx, "Sorry, I couldn't remember that name.")
		return
	}
	h.Voice.Say(ctx, "Alright, I will be called "+name+" from now on.")
}

func (h *Handlers) screenshot(ctx context.Context) {
	if h.Screenshot == nil || !h.Screenshot.Available() {
		h.Voice.Say(ctx, "Screenshot feature is unavailable on this device.")
		return
	}
	if err := h.Screenshot.Capture(ctx, h.ScreenshotPath); err != nil {
		h.warn("screenshot capture failed", err)
		h.Voice.Say(ctx, "Screenshot feature is unavailable on this device.")
		return
	}
	h.Voice.Say(ctx, "Screenshot saved at "+h.ScreenshotPath)
}

func (h *Handlers) now() time.Time {
	if h.Now == nil {
		return time.Now()
	}
	return h.Now()
}

func (h *Handlers) warn(msg string, err error, args ...any) {
	if h.Logger == nil {
		return
	}
	h.Logger.Warn(msg, append([]any{"error", err.Error()}, args...)...)
}
