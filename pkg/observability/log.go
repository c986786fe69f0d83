package observability

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
)

// LogHooks writes every event to a logger at debug level; failures are
// logged as warnings. It implements all three hook interfaces.
type LogHooks struct {
	Logger *log.Logger
}

// NewLogHooks returns hooks that log to logger.
func NewLogHooks(logger *log.Logger) *LogHooks {
	return &LogHooks{Logger: logger.WithPrefix("obs")}
}

func (h *LogHooks) OnStageStart(_ context.Context, stage string, nodes int) {
	h.Logger.Debug("stage start", "stage", stage, "nodes", nodes)
}

func (h *LogHooks) OnStageComplete(_ context.Context, stage string, nodes int, d time.Duration, err error) {
	if err != nil {
		h.Logger.Warn("stage failed", "stage", stage, "duration", d, "err", err)
		return
	}
	h.Logger.Debug("stage done", "stage", stage, "nodes", nodes, "duration", d)
}

func (h *LogHooks) OnIssues(_ context.Context, kind string, count int) {
	h.Logger.Debug("issues", "kind", kind, "count", count)
}

func (h *LogHooks) OnCacheHit(_ context.Context, keyType string) {
	h.Logger.Debug("cache hit", "type", keyType)
}

func (h *LogHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.Logger.Debug("cache miss", "type", keyType)
}

func (h *LogHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.Logger.Debug("cache set", "type", keyType, "bytes", size)
}

func (h *LogHooks) OnFetch(_ context.Context, source, query string) {
	h.Logger.Debug("fetch", "source", source, "query", query)
}

func (h *LogHooks) OnFetchComplete(_ context.Context, source, query string, terms int, d time.Duration, err error) {
	if err != nil {
		h.Logger.Warn("fetch failed", "source", source, "query", query, "duration", d, "err", err)
		return
	}
	h.Logger.Debug("fetched", "source", source, "query", query, "terms", terms, "duration", d)
}

var (
	_ PipelineHooks = (*LogHooks)(nil)
	_ CacheHooks    = (*LogHooks)(nil)
	_ SourceHooks   = (*LogHooks)(nil)
)
