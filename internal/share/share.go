// Package share hands the app link to the platform's share facility, or
// falls back to manual instructions.
package share

import (
	"context"
	"net/url"
	"os/exec"
	"runtime"
	"strings"

	"github.com/rs/zerolog"

	apperrors "crypto-advisor/internal/errors"
	"crypto-advisor/internal/logging"
	"crypto-advisor/internal/models"
)

// IntentURL is the X compose endpoint used as the share target.
const IntentURL = "https://x.com/intent/tweet"

// Result describes what Share did.
type Result struct {
	Opened    bool        `json:"opened"`
	IntentURL string      `json:"intentUrl"`
	Message   models.Text `json:"message"`
}

// Sharer opens share intents through the platform opener.
type Sharer struct {
	goos     string
	lookPath func(string) (string, error)
	start    func(ctx context.Context, name string, args ...string) error
	logger   zerolog.Logger
}

// New creates a Sharer for the running platform.
func New(logger zerolog.Logger) *Sharer {
	return &Sharer{
		goos:     runtime.GOOS,
		lookPath: exec.LookPath,
		start: func(ctx context.Context, name string, args ...string) error {
			return exec.CommandContext(ctx, name, args...).Start()
		},
		logger: logging.WithComponent(logger, "share"),
	}
}

// opener returns the command and leading arguments that open a URL.
func (s *Sharer) opener() (string, []string) {
	switch s.goos {
	case "darwin":
		return "open", nil
	case "windows":
		return "rundll32", []string{"url.dll,FileProtocolHandler"}
	default:
		return "xdg-open", nil
	}
}

// BuildIntentURL returns the compose URL sharing appURL with text.
func BuildIntentURL(appURL, text string) string {
	return IntentURL + "?" + url.Values{"text": {text}, "url": {appURL}}.Encode()
}

// Share opens a share intent for appURL. Links to local files cannot be
// shared. Without an opener the result carries manual instructions.
func (s *Sharer) Share(ctx context.Context, appURL, text string) (Result, error) {
	if strings.HasPrefix(strings.ToLower(strings.TrimSpace(appURL)), "file:") {
		return Result{}, apperrors.New(apperrors.KindValidation, "shareAppModal.shareErrorFileProtocol", nil)
	}

	intent := BuildIntentURL(appURL, text)
	name, args := s.opener()
	if _, err := s.lookPath(name); err != nil {
		s.logger.Debug().Str("opener", name).Msg("No platform opener, using manual instructions")
		return Result{
			IntentURL: intent,
			Message:   models.KeyText("shareAppModal.manualInstructions", map[string]any{"url": appURL}),
		}, nil
	}

	if err := s.start(ctx, name, append(args, intent)...); err != nil {
		s.logger.Error().Err(err).Str("opener", name).Msg("Failed to open share intent")
		return Result{IntentURL: intent}, apperrors.New(apperrors.KindInternal, "shareAppModal.shareErrorGeneric", map[string]any{"details": err.Error()})
	}
	return Result{
		Opened:    true,
		IntentURL: intent,
		Message:   models.KeyText("shareAppModal.shareOpened", nil),
	}, nil
}
