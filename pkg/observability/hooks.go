// Package observability lets the CLI and the server watch the pipeline
// without the pipeline depending on any metrics backend.
//
// Libraries emit events through the registered hooks; main registers
// implementations at startup. The defaults do nothing. [LogHooks] writes
// every event to a charmbracelet logger and is what `termtree -v` and the
// server use.
//
//	observability.SetPipelineHooks(observability.NewLogHooks(logger))
//
//	observability.Pipeline().OnStageStart(ctx, observability.StageRank, g.NodeCount())
//	...
//	observability.Pipeline().OnStageComplete(ctx, observability.StageRank, n, time.Since(start), nil)
package observability

import (
	"context"
	"sync"
	"time"
)

// Pipeline stages reported to [PipelineHooks].
const (
	StageFetch  = "fetch"
	StageBuild  = "build"
	StagePrune  = "prune"
	StageRank   = "rank"
	StageLayout = "layout"
	StageRender = "render"
)

// PipelineHooks receives events from the diagram pipeline.
type PipelineHooks interface {
	OnStageStart(ctx context.Context, stage string, nodes int)
	OnStageComplete(ctx context.Context, stage string, nodes int, duration time.Duration, err error)
	// OnIssues reports how many data issues of one kind a build produced.
	OnIssues(ctx context.Context, kind string, count int)
}

// CacheHooks receives events from cache lookups. keyType is "lookup" or
// "snapshot".
type CacheHooks interface {
	OnCacheHit(ctx context.Context, keyType string)
	OnCacheMiss(ctx context.Context, keyType string)
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// SourceHooks receives events from term sources.
type SourceHooks interface {
	OnFetch(ctx context.Context, source, query string)
	OnFetchComplete(ctx context.Context, source, query string, terms int, duration time.Duration, err error)
}

// NoopPipelineHooks ignores every event.
type NoopPipelineHooks struct{}

func (NoopPipelineHooks) OnStageStart(context.Context, string, int)                          {}
func (NoopPipelineHooks) OnStageComplete(context.Context, string, int, time.Duration, error) {}
func (NoopPipelineHooks) OnIssues(context.Context, string, int)                              {}

// NoopCacheHooks ignores every event.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopSourceHooks ignores every event.
type NoopSourceHooks struct{}

func (NoopSourceHooks) OnFetch(context.Context, string, string) {}
func (NoopSourceHooks) OnFetchComplete(context.Context, string, string, int, time.Duration, error) {
}

var (
	hooksMu       sync.RWMutex
	pipelineHooks PipelineHooks = NoopPipelineHooks{}
	cacheHooks    CacheHooks    = NoopCacheHooks{}
	sourceHooks   SourceHooks   = NoopSourceHooks{}
)

// SetPipelineHooks registers pipeline hooks. nil is ignored.
func SetPipelineHooks(h PipelineHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		pipelineHooks = h
	}
}

// SetCacheHooks registers cache hooks. nil is ignored.
func SetCacheHooks(h CacheHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cacheHooks = h
	}
}

// SetSourceHooks registers source hooks. nil is ignored.
func SetSourceHooks(h SourceHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		sourceHooks = h
	}
}

// Pipeline returns the registered pipeline hooks.
func Pipeline() PipelineHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return pipelineHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

// Source returns the registered source hooks.
func Source() SourceHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return sourceHooks
}

// Reset restores the no-op hooks.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	pipelineHooks = NoopPipelineHooks{}
	cacheHooks = NoopCacheHooks{}
	sourceHooks = NoopSourceHooks{}
}
