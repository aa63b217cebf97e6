package textprovider

import (
	"bytes"
	"context"
	"log/slog"
	"os/exec"
	"strings"
	"time"

	"github.com/joseph-ayodele/docextract/internal/common"
)

// Runner lets us stub external commands in tests.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (stdout, stderr []byte, err error)
}

type execRunner struct {
	logger *slog.Logger
}

func (r execRunner) Run(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	start := time.Now()

	cmd := exec.CommandContext(ctx, name, args...)
	var out, errb bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &errb

	err := cmd.Run()
	logger := r.logger.With(
		"document_id", common.DocumentIDFromContext(ctx),
		"cmd", name,
		"args", strings.Join(args, " "),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	if h, ok := common.ContentHashFromContext(ctx); ok {
		logger = logger.With("content_hash", h)
	}
	switch {
	case ctx.Err() != nil:
		logger.Warn("textprovider.exec.cancelled", "error", ctx.Err())
		return out.Bytes(), errb.Bytes(), ctx.Err()
	case err != nil:
		logger.Warn("textprovider.exec.failed", "error", err, "stderr", clip(errb.String(), maxStderrLog))
	default:
		logger.Debug("textprovider.exec.ok", "stdout_bytes", out.Len())
	}
	return out.Bytes(), errb.Bytes(), err
}

// maxStderrLog bounds the stderr excerpt attached to failure logs.
const maxStderrLog = 8 << 10

func clip(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "...(truncated)"
}
