package orchestrator

import (
	"os"
	"strings"
	"time"
)

// Timeout constants for different operations
var (
	// DefaultCommandTimeout bounds local git commands
	DefaultCommandTimeout = getTimeoutOrDefault("AUTOPUSH_COMMAND_TIMEOUT", 300*time.Second, 30*time.Second)
	// DefaultNetworkTimeout bounds pull and push
	DefaultNetworkTimeout = getTimeoutOrDefault("AUTOPUSH_NETWORK_TIMEOUT", 60*time.Second, 30*time.Second)
	// RecoveryTimeout bounds the rebase abort issued after a panic
	RecoveryTimeout = getTimeoutOrDefault("AUTOPUSH_RECOVERY_TIMEOUT", 30*time.Second, 5*time.Second)
)

// SummaryLimit is the number of changed paths written to the run log.
const SummaryLimit = 10

// isTestEnvironment detects if we're running in a test environment
func isTestEnvironment() bool {
	for _, arg := range os.Args {
		if strings.Contains(arg, ".test") || strings.Contains(arg, "go test") {
			return true
		}
	}
	return os.Getenv("GO_TEST") == "true" || os.Getenv("TEST_MODE") == "true"
}

// getTimeoutOrDefault returns production timeout or test timeout based on environment
func getTimeoutOrDefault(envVar string, prodDefault, testDefault time.Duration) time.Duration {
	if env := os.Getenv(envVar); env != "" {
		if duration, err := time.ParseDuration(env); err == nil {
			return duration
		}
	}
	if isTestEnvironment() {
		return testDefault
	}
	return prodDefault
}
