package export_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"go-quina-board/internal/export"
	"go-quina-board/internal/model"
	"go-quina-board/internal/store"
)

func TestExport_ToJSONData_RoundTrip(t *testing.T) {
	out := filepath.Join(t.TempDir(), "data", "results.json")
	draws := []model.DrawRecord{{DrawNumber: 6300, Date: "2024-01-02", Numbers: []int{1, 2, 3, 4, 5}}}
	if err := export.ToJSONData(context.Background(), draws, "megasena.com", out); err != nil {
		t.Fatalf("export: %v", err)
	}
	f, err := export.ReadFile(out)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if f.Source != "megasena.com" || f.LastUpdated == nil {
		t.Fatalf("header mismatch: %+v", f)
	}
	if diff := cmp.Diff(draws, f.Results); diff != "" {
		t.Fatalf("results mismatch (-want +got):\n%s", diff)
	}
}

func TestExport_ToJSON_FromStoreWithLimit(t *testing.T) {
	dir := t.TempDir()
	s, err := store.OpenSQLite(filepath.Join(dir, "t.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer s.Close()
	ctx := context.Background()
	for i := 1; i <= 40; i++ {
		if err := s.UpsertDraw(ctx, model.DrawRecord{DrawNumber: model.DrawID(i), Date: "2024-01-01", Numbers: []int{1, 2, 3, 4, 5}}); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
	out := filepath.Join(dir, "results.json")
	if err := export.ToJSON(ctx, s, "test", out, 30); err != nil {
		t.Fatalf("export: %v", err)
	}
	f, err := export.FileSource{Path: out}.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(f.Results) != 30 || f.Results[0].DrawNumber != 40 {
		t.Fatalf("len=%d first=%v", len(f.Results), f.Results[0].DrawNumber)
	}

	sf, err := export.StoreSource{Store: s, Limit: 5}.Load(ctx)
	if err != nil || len(sf.Results) != 5 {
		t.Fatalf("store source: %v len=%d", err, len(sf.Results))
	}
}

func TestExport_FileSource_Missing(t *testing.T) {
	_, err := export.FileSource{Path: filepath.Join(t.TempDir(), "nope.json")}.Load(context.Background())
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expect not-exist, got %v", err)
	}
}

func TestExport_StoreSource_LastUpdated(t *testing.T) {
	s, err := store.OpenSQLite(filepath.Join(t.TempDir(), "t.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer s.Close()
	ctx := context.Background()
	src := export.StoreSource{Store: s, Source: "sqlite", Limit: 30}

	empty, err := src.Load(ctx)
	if err != nil {
		t.Fatalf("load empty: %v", err)
	}
	if empty.LastUpdated != nil || len(empty.Results) != 0 {
		t.Fatalf("empty store: lastUpdated=%v results=%v", empty.LastUpdated, empty.Results)
	}

	if err := s.UpsertDraw(ctx, model.DrawRecord{DrawNumber: 1, Date: "2024-01-01", Numbers: []int{1, 2, 3, 4, 5}}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	f1, err := src.Load(ctx)
	if err != nil || f1.LastUpdated == nil {
		t.Fatalf("load: %v lastUpdated=%v", err, f1.LastUpdated)
	}
	f2, _ := src.Load(ctx)
	if f2.LastUpdated == nil || !f2.LastUpdated.Equal(*f1.LastUpdated) {
		t.Fatalf("lastUpdated should follow writes, not reads: %v vs %v", f1.LastUpdated, f2.LastUpdated)
	}
}
