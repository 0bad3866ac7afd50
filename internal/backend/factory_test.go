package backend

import (
	"context"
	"path/filepath"
	"testing"

	"finclient/internal/config"
)

func TestCreateStore(t *testing.T) {
	ctx := context.Background()
	f := NewFactory(nil)

	tests := []struct {
		name string
		cfg  Config
	}{
		{name: "memory", cfg: Config{Type: MemoryBackend}},
		{name: "sqlite", cfg: Config{Type: SQLiteBackend, SQLiteDBPath: filepath.Join(t.TempDir(), "cache.db")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := f.CreateStore(ctx, tt.cfg)
			if err != nil {
				t.Fatalf("CreateStore: %v", err)
			}
			defer func() {
				if err := res.Cleanup(); err != nil {
					t.Errorf("Cleanup: %v", err)
				}
			}()

			if err := res.Store.Set(ctx, "k", "v"); err != nil {
				t.Fatalf("Set: %v", err)
			}
			v, ok, err := res.Store.Get(ctx, "k")
			if err != nil || !ok || v != "v" {
				t.Fatalf("Get = %q, %v, %v", v, ok, err)
			}
		})
	}
}

func TestCreateStoreRejectsInvalidConfig(t *testing.T) {
	f := NewFactory(nil)
	if _, err := f.CreateStore(context.Background(), Config{Type: "redis"}); err == nil {
		t.Error("expected error for unknown backend")
	}
	if _, err := f.CreateStore(context.Background(), Config{Type: SQLiteBackend}); err == nil {
		t.Error("expected error for sqlite without path")
	}
}

func TestFromAppConfig(t *testing.T) {
	if _, err := FromAppConfig(nil); err == nil {
		t.Error("expected error for nil config")
	}

	cfg, err := FromAppConfig(&config.Config{CacheBackend: "sqlite", SQLiteDBPath: "/tmp/x.db", CacheMaxEntries: 7})
	if err != nil {
		t.Fatalf("FromAppConfig: %v", err)
	}
	if cfg.Type != SQLiteBackend || cfg.SQLiteDBPath != "/tmp/x.db" || cfg.MaxEntries != 7 {
		t.Errorf("unexpected config: %+v", cfg)
	}

	if _, err := FromAppConfig(&config.Config{CacheBackend: "sheets"}); err == nil {
		t.Error("expected error for unsupported backend")
	}
}

func TestGetBackendTypeStrings(t *testing.T) {
	got := GetBackendTypeStrings()
	if len(got) != 2 || got[0] != "sqlite" || got[1] != "memory" {
		t.Errorf("GetBackendTypeStrings() = %v", got)
	}
}
