package workpool

import (
	"fmt"
	"os"
	"strings"
)

// EnvVar selects the executor mode for the process.
const EnvVar = "APPGRAPH_VIRTUAL_EXECUTION"

// Mode controls whether the lightweight executor is enabled.
type Mode string

const (
	ModeOn   Mode = "on"
	ModeOff  Mode = "off"
	ModeAuto Mode = "auto"
)

// ParseMode accepts on/off/auto, case-insensitively. Empty means auto.
func ParseMode(raw string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", string(ModeAuto):
		return ModeAuto, nil
	case string(ModeOn), "true", "enabled":
		return ModeOn, nil
	case string(ModeOff), "false", "disabled":
		return ModeOff, nil
	default:
		return "", fmt.Errorf("invalid virtual execution mode %q: must be 'on', 'off' or 'auto'", raw)
	}
}

// ModeFromEnv reads EnvVar. An invalid value falls back to auto and is
// reported through the returned error.
func ModeFromEnv() (Mode, error) {
	mode, err := ParseMode(os.Getenv(EnvVar))
	if err != nil {
		return ModeAuto, err
	}
	return mode, nil
}

// supported reports whether the runtime can run lightweight tasks. Goroutines
// are always available, so auto resolves to enabled.
func supported() bool {
	return true
}

// Enabled resolves a mode against the runtime capability.
func (m Mode) Enabled() bool {
	switch m {
	case ModeOn:
		return true
	case ModeOff:
		return false
	default:
		return supported()
	}
}
