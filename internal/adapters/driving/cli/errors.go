package cli

import (
	"errors"

	"github.com/custodia-labs/policydesk/internal/core/domain"
)

// ErrNotConfigured is returned when a command runs without dependencies.
var ErrNotConfigured = errors.New("services not configured")

// Exit codes.
const (
	ExitOK         = 0
	ExitFailure    = 1
	ExitValidation = 2
	ExitConflict   = 3
	ExitNetwork    = 4
	ExitService    = 5
)

// ExitCode maps an error returned by Execute to a process exit code.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, domain.ErrValidation):
		return ExitValidation
	case errors.Is(err, domain.ErrConflict):
		return ExitConflict
	case errors.Is(err, domain.ErrNetwork):
		return ExitNetwork
	case errors.Is(err, domain.ErrService):
		return ExitService
	default:
		return ExitFailure
	}
}
