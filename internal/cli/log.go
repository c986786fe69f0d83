package cli

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/termtree/pkg/pipeline"
)

// newLogger returns the diagnostics logger. Command output never goes
// through it; see ui.go.
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
		Prefix:          appName,
	})
}

// logRun reports a finished pipeline run: its size, whether the term
// snapshot came from the cache, and the time spent in each stage that ran.
func logRun(l *log.Logger, msg string, res *pipeline.Result) {
	kv := []any{
		"terms", res.Stats.Terms,
		"nodes", res.Stats.NodeCount,
		"edges", res.Stats.EdgeCount,
		"cached", res.CacheInfo.SnapshotHit,
	}
	for _, st := range []struct {
		name string
		d    time.Duration
	}{
		{"fetch", res.Stats.FetchTime},
		{"build", res.Stats.BuildTime},
		{"layout", res.Stats.LayoutTime},
		{"render", res.Stats.RenderTime},
	} {
		if st.d > 0 {
			kv = append(kv, st.name, st.d.Round(time.Millisecond))
		}
	}
	l.Info(msg, kv...)
}
