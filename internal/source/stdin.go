package source

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/GabrielNunesIT/go-libs/logger"
)

// StdinSource reads a stream to EOF once and serves that text on every Read.
type StdinSource struct {
	reader  io.Reader
	logger  logger.ILogger
	mu      sync.Mutex
	done    bool
	content string
}

// NewStdinSource creates a source over reader, normally os.Stdin.
func NewStdinSource(reader io.Reader, log logger.ILogger) *StdinSource {
	return &StdinSource{
		reader: reader,
		logger: log.SubLogger("StdinSource"),
	}
}

// Name returns the source identifier.
func (s *StdinSource) Name() string {
	return "stdin"
}

// Read consumes the stream on first use. A failed read may be retried and
// continues where the previous attempt stopped.
func (s *StdinSource) Read(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.done {
		return s.content, nil
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	data, err := io.ReadAll(s.reader)
	s.content += string(data)
	if err != nil {
		return "", fmt.Errorf("reading stdin: %w", err)
	}

	s.done = true
	s.content = strings.ToValidUTF8(s.content, "�")
	s.logger.Debugf("EOF reached: bytes=%d", len(s.content))
	return s.content, nil
}
