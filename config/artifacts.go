package config

import "fmt"

// ArtifactMode says when a diagnostic artifact (screenshot, video, or trace) is captured
// for a test attempt, and whether it is kept afterward.
type ArtifactMode string

const (
	ArtifactOff             ArtifactMode = "off"
	ArtifactOn              ArtifactMode = "on"
	ArtifactOnlyOnFailure   ArtifactMode = "only-on-failure"
	ArtifactRetainOnFailure ArtifactMode = "retain-on-failure"
	ArtifactOnFirstRetry    ArtifactMode = "on-first-retry"
	ArtifactOnAllRetries    ArtifactMode = "on-all-retries"
)

var (
	screenshotModes = []ArtifactMode{ArtifactOff, ArtifactOn, ArtifactOnlyOnFailure}
	videoModes      = []ArtifactMode{ArtifactOff, ArtifactOn, ArtifactRetainOnFailure, ArtifactOnFirstRetry}
	traceModes      = []ArtifactMode{ArtifactOff, ArtifactOn, ArtifactRetainOnFailure, ArtifactOnFirstRetry,
		ArtifactOnAllRetries}
)

// Record returns true if recording should be active during the specified attempt (0 for the
// first attempt, 1 for the first retry).
func (m ArtifactMode) Record(attempt int) bool {
	switch m {
	case ArtifactOn, ArtifactRetainOnFailure:
		return true
	case ArtifactOnFirstRetry:
		return attempt == 1
	case ArtifactOnAllRetries:
		return attempt > 0
	default:
		return false
	}
}

// Keep returns true if whatever was recorded during the attempt should be saved.
func (m ArtifactMode) Keep(attempt int, failed bool) bool {
	switch m {
	case ArtifactOn:
		return true
	case ArtifactOnlyOnFailure, ArtifactRetainOnFailure:
		return failed
	case ArtifactOnFirstRetry, ArtifactOnAllRetries:
		return m.Record(attempt)
	default:
		return false
	}
}

func checkMode(kind string, m ArtifactMode, allowed []ArtifactMode) error {
	for _, a := range allowed {
		if m == a {
			return nil
		}
	}
	return fmt.Errorf("%s mode %q is not one of %q", kind, m, allowed)
}
