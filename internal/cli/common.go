package cli

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	v1 "github.com/joelanford/airlift/api/v1"
	"github.com/joelanford/airlift/internal/bundle"
	"github.com/joelanford/airlift/internal/compress"
	"github.com/joelanford/airlift/internal/console"
	"github.com/joelanford/airlift/internal/reference"
	"github.com/joelanford/airlift/internal/retry"
)

// Exit codes per failure class, so calling scripts can branch without
// parsing messages.
const (
	exitGeneric           = 1
	exitInvalidReference  = 2
	exitPullFailure       = 3
	exitMissingDependency = 4
	exitIntegrity         = 5
)

func handleError(err error) {
	if err == nil {
		return
	}
	console.Fatalf(exitCode(err), "💥 %v", err)
}

func exitCode(err error) int {
	var exhausted *retry.ExhaustedError
	switch {
	case errors.Is(err, reference.ErrInvalid):
		return exitInvalidReference
	case errors.As(err, &exhausted):
		return exitPullFailure
	case errors.Is(err, compress.ErrMissingDependency):
		return exitMissingDependency
	case errors.Is(err, bundle.ErrIntegrity), errors.Is(err, v1.ErrUnsupportedSchema):
		return exitIntegrity
	}
	return exitGeneric
}

// Environment overrides with sane defaults; flags take precedence by using
// these as flag defaults.
func envString(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func envDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func envBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		switch strings.ToLower(v) {
		case "1", "true", "yes":
			return true
		case "0", "false", "no":
			return false
		}
	}
	return def
}

func retryFlags(defaults retry.Config) (attempts *int, baseDelay, maxDelay *time.Duration) {
	a := envInt("AIRLIFT_RETRY_ATTEMPTS", defaults.Attempts)
	b := envDuration("AIRLIFT_RETRY_BASE_DELAY", defaults.BaseDelay)
	m := envDuration("AIRLIFT_RETRY_MAX_DELAY", defaults.MaxDelay)
	return &a, &b, &m
}
