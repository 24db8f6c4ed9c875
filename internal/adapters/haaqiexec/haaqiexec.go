// Package haaqiexec bridges to the external HAAQI implementation over a
// subprocess: one invocation per channel, JSON request on stdin, JSON
// reply on stdout.
package haaqiexec

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os/exec"
	"strings"

	"github.com/auralab/stemscore/internal/domain/scoring"
	"github.com/auralab/stemscore/pkg/logger"
)

// reply is the subset of the scorer's output this harness consumes; the
// metric's auxiliary diagnostics are ignored.
type reply struct {
	Score float64 `json:"score"`
}

// Bridge implements scoring.Metric by running an external command.
type Bridge struct {
	command []string
	logger  logger.Logger
}

// Option applies a configuration option to the Bridge.
type Option func(*Bridge)

// WithLogger sets a custom logger for the bridge.
func WithLogger(l logger.Logger) Option {
	return func(b *Bridge) {
		if l != nil {
			b.logger = l
		}
	}
}

// New creates a Bridge for the given command line, e.g.
// "python3 -m clarity.haaqi-score".
func New(command string, opts ...Option) (*Bridge, error) {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return nil, ErrNoCommand
	}

	b := &Bridge{
		command: fields,
		logger:  logger.Get().Named("haaqi"),
	}

	// Apply all options
	for _, opt := range opts {
		opt(b)
	}

	return b, nil
}

// Score runs one metric invocation. Any subprocess failure, malformed
// reply, or non-finite score is fatal for the run.
func (b *Bridge) Score(ctx context.Context, req scoring.Request) (float64, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return 0, fmt.Errorf("%w: encode request: %v", ErrBridgeFailure, err)
	}

	cmd := exec.CommandContext(ctx, b.command[0], b.command[1:]...) //nolint:gosec // command comes from operator config
	cmd.Stdin = bytes.NewReader(payload)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		b.logger.Error(ctx, "metric subprocess failed",
			logger.String("command", strings.Join(b.command, " ")),
			logger.String("stderr", strings.TrimSpace(stderr.String())),
			logger.Error(err),
		)
		return 0, fmt.Errorf("%w: %s: %v", ErrBridgeFailure, strings.TrimSpace(stderr.String()), err)
	}

	var out reply
	if err := json.Unmarshal(stdout.Bytes(), &out); err != nil {
		return 0, fmt.Errorf("%w: decode reply: %v", ErrBridgeFailure, err)
	}
	if math.IsNaN(out.Score) || math.IsInf(out.Score, 0) {
		return 0, fmt.Errorf("%w: non-finite score %v", ErrBridgeFailure, out.Score)
	}

	return out.Score, nil
}
