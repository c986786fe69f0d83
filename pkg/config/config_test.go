package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/matzehuels/termtree/pkg/cache"
	"github.com/matzehuels/termtree/pkg/core/render/tree/layout"
	"github.com/matzehuels/termtree/pkg/errors"
)

func env(m map[string]string) LookupFunc {
	return func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	}
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() = %v", err)
	}
	if cfg.Layout.FontSize != layout.DefaultFontSize {
		t.Errorf("Layout.FontSize = %v, want %v", cfg.Layout.FontSize, layout.DefaultFontSize)
	}
	if cfg.Cache.Backend != BackendFile {
		t.Errorf("Cache.Backend = %q, want %q", cfg.Cache.Backend, BackendFile)
	}
}

func TestParse(t *testing.T) {
	cfg, err := Parse(`
[layout]
max_line_width = 200

[palette]
fallback = "#000000"

[palette.colors]
"part of" = "#123456"

[cache]
backend = "redis"
ttl = "2h"

[cache.redis]
addr = "localhost:6379"
db = 2

[source]
lookup_url = "https://terms.example.org/api"
`)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if cfg.Layout.MaxLineWidth != 200 {
		t.Errorf("MaxLineWidth = %v, want 200", cfg.Layout.MaxLineWidth)
	}
	if cfg.Layout.LevelGap != layout.DefaultLevelGap {
		t.Errorf("LevelGap = %v, want default %v", cfg.Layout.LevelGap, layout.DefaultLevelGap)
	}
	if cfg.Cache.TTL != 2*time.Hour {
		t.Errorf("Cache.TTL = %v, want 2h", cfg.Cache.TTL)
	}
	if cfg.Cache.Redis == nil || cfg.Cache.Redis.DB != 2 {
		t.Errorf("Cache.Redis = %+v, want db 2", cfg.Cache.Redis)
	}
	pal := cfg.Palette.Palette()
	if got := pal.Color("part of"); got != "#123456" {
		t.Errorf("Color(part of) = %q, want #123456", got)
	}
	if got := pal.Color("no such relation"); got != "#000000" {
		t.Errorf("Color(unknown) = %q, want fallback #000000", got)
	}
}

func TestParseRejects(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"syntax", "[layout"},
		{"unknown key", "[layout]\nfont = 3"},
		{"bad backend", "[cache]\nbackend = \"sqlite\""},
		{"redis without settings", "[cache]\nbackend = \"redis\""},
		{"negative gap", "[layout]\nlevel_gap = -1"},
		{"bad colour", "[palette.colors]\n\"part of\" = \"blue\""},
		{"bad url", "[source]\nlookup_url = \"not a url\""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.data)
			if !errors.Is(err, errors.ErrCodeInvalidConfig) {
				t.Errorf("Parse() error = %v, want INVALID_CONFIG", err)
			}
		})
	}
}

func TestApplyEnv(t *testing.T) {
	cfg := Default()
	err := cfg.ApplyEnv(env(map[string]string{
		"TERMTREE_CACHE_BACKEND": "redis",
		"TERMTREE_REDIS_ADDR":    "cache:6379",
		"TERMTREE_CACHE_TTL":     "90m",
		"TERMTREE_MONGO_URI":     "mongodb://db:27017",
		"TERMTREE_FONT_SIZE":     "16",
		"TERMTREE_DEPS":          "",
	}))
	if err != nil {
		t.Fatalf("ApplyEnv() error = %v", err)
	}
	if cfg.Cache.Backend != BackendRedis || cfg.Cache.Redis.Addr != "cache:6379" {
		t.Errorf("Cache = %+v", cfg.Cache)
	}
	if cfg.Cache.TTL != 90*time.Minute {
		t.Errorf("Cache.TTL = %v, want 90m", cfg.Cache.TTL)
	}
	if cfg.Source.Mongo == nil || cfg.Source.Mongo.URI != "mongodb://db:27017" {
		t.Errorf("Source.Mongo = %+v", cfg.Source.Mongo)
	}
	if cfg.Layout.FontSize != 16 {
		t.Errorf("FontSize = %v, want 16", cfg.Layout.FontSize)
	}
	if cfg.Source.Dependencies != "" {
		t.Errorf("empty variable applied: %q", cfg.Source.Dependencies)
	}
}

func TestApplyEnvBadValue(t *testing.T) {
	err := Default().ApplyEnv(env(map[string]string{"TERMTREE_CACHE_TTL": "soon"}))
	if !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("ApplyEnv() error = %v, want INVALID_CONFIG", err)
	}
}

func TestLoadFile(t *testing.T) {
	t.Setenv("TERMTREE_SERVER_ADDR", ":9999")
	path := filepath.Join(t.TempDir(), "termtree.toml")
	if err := os.WriteFile(path, []byte("[cache]\nbackend = \"memory\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Cache.Backend != BackendMemory {
		t.Errorf("Cache.Backend = %q, want memory", cfg.Cache.Backend)
	}
	if cfg.Server.Addr != ":9999" {
		t.Errorf("Server.Addr = %q, want env override :9999", cfg.Server.Addr)
	}

	c, err := cfg.Cache.OpenCache(context.Background())
	if err != nil {
		t.Fatalf("OpenCache() error = %v", err)
	}
	if _, ok := c.(*cache.MemoryCache); !ok {
		t.Errorf("OpenCache() = %T, want *cache.MemoryCache", c)
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("Load() error = %v, want FILE_NOT_FOUND", err)
	}
}

func TestSources(t *testing.T) {
	s := SourceConfig{Dependencies: "deps.json", LookupURL: "https://terms.example.org"}
	if s.Empty() {
		t.Fatal("Empty() = true")
	}
	srcs, closeFn, err := s.Sources(context.Background(), cache.NewNullCache(), nil, time.Hour, nil)
	if err != nil {
		t.Fatalf("Sources() error = %v", err)
	}
	defer closeFn(context.Background())
	if len(srcs) != 2 || srcs[0].Name() != "file" || srcs[1].Name() != "http" {
		t.Errorf("Sources() names = %v", srcs)
	}
	if !(SourceConfig{}).Empty() {
		t.Error("zero SourceConfig not Empty()")
	}
}

func TestCacheKeyer(t *testing.T) {
	plain := CacheConfig{}.Keyer().SnapshotKey("file", []string{"cell"})
	scoped := CacheConfig{Namespace: "obi"}.Keyer().SnapshotKey("file", []string{"cell"})
	if scoped != "obi:"+plain {
		t.Errorf("scoped key = %q, want %q", scoped, "obi:"+plain)
	}
}
