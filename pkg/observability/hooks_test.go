package observability

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"
)

type recorder struct {
	NoopPipelineHooks
	mu     sync.Mutex
	stages []string
}

func (r *recorder) OnStageComplete(_ context.Context, stage string, _ int, _ time.Duration, _ error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stages = append(r.stages, stage)
}

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	p := NoopPipelineHooks{}
	p.OnStageStart(ctx, StageBuild, 10)
	p.OnStageComplete(ctx, StageBuild, 10, time.Second, nil)
	p.OnIssues(ctx, "unresolved_parent", 2)

	c := NoopCacheHooks{}
	c.OnCacheHit(ctx, "lookup")
	c.OnCacheMiss(ctx, "lookup")
	c.OnCacheSet(ctx, "snapshot", 1024)

	s := NoopSourceHooks{}
	s.OnFetch(ctx, "http", "cell")
	s.OnFetchComplete(ctx, "http", "cell", 3, time.Second, nil)
}

func TestRegistry(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	if _, ok := Pipeline().(NoopPipelineHooks); !ok {
		t.Error("Pipeline() should default to NoopPipelineHooks")
	}
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Error("Cache() should default to NoopCacheHooks")
	}
	if _, ok := Source().(NoopSourceHooks); !ok {
		t.Error("Source() should default to NoopSourceHooks")
	}

	r := &recorder{}
	SetPipelineHooks(r)
	SetPipelineHooks(nil)
	Pipeline().OnStageComplete(context.Background(), StageRank, 1, 0, nil)
	if len(r.stages) != 1 || r.stages[0] != StageRank {
		t.Errorf("recorded stages = %v, want [rank]", r.stages)
	}

	lh := NewLogHooks(log.New(&bytes.Buffer{}))
	SetCacheHooks(lh)
	SetSourceHooks(lh)
	if Cache() != CacheHooks(lh) || Source() != SourceHooks(lh) {
		t.Error("Set*Hooks should register the hooks")
	}

	Reset()
	if _, ok := Pipeline().(NoopPipelineHooks); !ok {
		t.Error("Reset() should restore NoopPipelineHooks")
	}
}

func TestLogHooks(t *testing.T) {
	var buf bytes.Buffer
	logger := log.NewWithOptions(&buf, log.Options{Level: log.DebugLevel})
	h := NewLogHooks(logger)
	ctx := context.Background()

	h.OnStageComplete(ctx, StageLayout, 12, time.Millisecond, nil)
	h.OnFetchComplete(ctx, "mongo", "cell", 0, time.Millisecond, errors.New("timeout"))
	h.OnCacheMiss(ctx, "lookup")

	out := buf.String()
	for _, want := range []string{"stage done", "stage=layout", "fetch failed", "err=timeout", "cache miss"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q:\n%s", want, out)
		}
	}
}
