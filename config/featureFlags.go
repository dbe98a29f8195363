package config

import (
	"os"
	"strings"
)

// AllowTerminalProgress restores the legacy behavior where setting progress on
// an APROBADO/RECHAZADO accreditation silently moves it back into the derived
// state. The default hard-blocks; the supported path out of a terminal state
// is the explicit reopen operation.
//
// Set via env:
// - ALLOW_TERMINAL_PROGRESS=true
func AllowTerminalProgress() bool {
	v := strings.ToLower(strings.TrimSpace(os.Getenv("ALLOW_TERMINAL_PROGRESS")))
	return v == "1" || v == "true" || v == "yes" || v == "y"
}
