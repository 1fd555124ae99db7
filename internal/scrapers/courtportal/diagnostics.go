package courtportal

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/mazen160/go-random"
)

// Diagnostics writes failure evidence (a note and a screenshot) under a
// per-run directory, so a broken selector can be debugged from the page
// the portal actually served.
type Diagnostics struct {
	dir   string
	runId string
}

func NewDiagnostics(dir string) *Diagnostics {
	runId, err := random.String(8)
	if err != nil {
		runId = time.Now().UTC().Format("20060102T150405")
	}
	return &Diagnostics{dir: dir, runId: runId}
}

// Capture records the failure for one case. It never fails the caller:
// the original error is what matters, diagnostics are best effort.
func (d *Diagnostics) Capture(ctx context.Context, driver Driver, caseNumber string, cause error) {
	if d == nil || d.dir == "" {
		return
	}

	dir := filepath.Join(d.dir, d.runId)
	err := os.MkdirAll(dir, 0o755)
	if err != nil {
		slog.WarnContext(ctx, "failed to create diagnostics dir", "dir", dir, "err", err)
		return
	}

	name := fmt.Sprintf("%s_%s", sanitizeFilename(caseNumber), time.Now().UTC().Format("150405"))

	note := fmt.Sprintf(
		"case: %s\ntime: %s\nerror: %v\n",
		caseNumber, time.Now().UTC().Format(time.RFC3339), cause,
	)
	err = os.WriteFile(filepath.Join(dir, name+".txt"), []byte(note), 0o644)
	if err != nil {
		slog.WarnContext(ctx, "failed to write diagnostics note", "err", err)
	}

	png, err := driver.Screenshot(ctx)
	if err != nil {
		slog.WarnContext(ctx, "failed to capture screenshot", "err", err)
		return
	}
	err = os.WriteFile(filepath.Join(dir, name+".png"), png, 0o644)
	if err != nil {
		slog.WarnContext(ctx, "failed to write screenshot", "err", err)
	}
}

func sanitizeFilename(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9',
			r == '-', r == '_', r == '.':
			out = append(out, r)
		default:
			out = append(out, '_')
		}
	}
	return string(out)
}
