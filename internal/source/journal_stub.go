//go:build !linux || !cgo

package source

import (
	"context"
	"fmt"
	"runtime"

	"github.com/GabrielNunesIT/go-libs/logger"
)

// JournalSource is a stub for systems without systemd journal support.
type JournalSource struct {
	units  []string
	logger logger.ILogger
}

// NewJournalSource creates a journal source stub.
func NewJournalSource(units []string, log logger.ILogger) *JournalSource {
	return &JournalSource{
		units:  units,
		logger: log.SubLogger("JournalSource"),
	}
}

// Name returns the source identifier.
func (j *JournalSource) Name() string {
	return "journal"
}

// Read returns an error on unsupported systems.
func (j *JournalSource) Read(ctx context.Context) (string, error) {
	return "", fmt.Errorf("journal source is only supported on Linux with cgo (current OS: %s)", runtime.GOOS)
}
