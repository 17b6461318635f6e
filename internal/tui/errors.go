package tui

import (
	"errors"
	"fmt"

	"github.com/mfl/ghlite/internal/engine"
	"github.com/mfl/ghlite/internal/gh"
)

// Describe maps an engine/client error to user-facing guidance. The five
// error kinds call for different reactions, so they must stay
// distinguishable all the way to the screen: missing credentials means "fix
// your settings", a transport failure means "try again", a decode failure
// means the schema changed underneath us.
func Describe(err error) string {
	var (
		statusErr    *gh.StatusError
		transportErr *gh.TransportError
		decodeErr    *gh.DecodeError
	)

	switch {
	case err == nil:
		return ""
	case errors.Is(err, gh.ErrNoCredentials):
		return "No GitHub token configured — press s to open settings"
	case errors.Is(err, gh.ErrInvalidRequest):
		return fmt.Sprintf("Invalid request: %v", err)
	case errors.Is(err, engine.ErrRefreshInFlight):
		return "A refresh is already running"
	case errors.As(err, &statusErr):
		return fmt.Sprintf("GitHub answered HTTP %d", statusErr.StatusCode)
	case errors.As(err, &transportErr):
		return "Network problem reaching GitHub — try again"
	case errors.As(err, &decodeErr):
		return "Unexpected response from GitHub (schema mismatch)"
	default:
		return err.Error()
	}
}
