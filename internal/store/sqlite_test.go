package store_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"go-quina-board/internal/model"
	"go-quina-board/internal/store"
)

func open(t *testing.T) *store.SQLite {
	t.Helper()
	s, err := store.OpenSQLite(filepath.Join(t.TempDir(), "t.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSQLite_UpsertListTrim(t *testing.T) {
	s := open(t)
	ctx := context.Background()
	for i := 1; i <= 5; i++ {
		r := model.DrawRecord{DrawNumber: model.DrawID(100 + i), Date: "2024-01-0" + string(rune('0'+i)), Numbers: []int{1, 2, 3, 4, i + 10}}
		if err := s.UpsertDraw(ctx, r); err != nil {
			t.Fatalf("upsert: %v", err)
		}
	}
	// 更正同一期
	fix := model.DrawRecord{DrawNumber: 105, Date: "2024-01-05", Numbers: []int{9, 8, 7, 6, 5}}
	if err := s.UpsertDraw(ctx, fix); err != nil {
		t.Fatalf("upsert fix: %v", err)
	}
	if err := s.UpsertDraw(ctx, model.DrawRecord{DrawNumber: 1, Numbers: []int{1}}); err == nil {
		t.Fatalf("expect error for invalid record")
	}

	got, err := s.ListDraws(ctx, 2)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	want := []model.DrawRecord{
		fix,
		{DrawNumber: 104, Date: "2024-01-04", Numbers: []int{1, 2, 3, 4, 14}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("list mismatch (-want +got):\n%s", diff)
	}

	if err := s.Trim(ctx, 3); err != nil {
		t.Fatalf("trim: %v", err)
	}
	st, err := s.Stats(ctx)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if st.Draws != 3 || st.Latest != 105 {
		t.Fatalf("stats mismatch: %+v", st)
	}
}

func TestSQLite_Reset(t *testing.T) {
	s := open(t)
	ctx := context.Background()
	if err := s.UpsertDraw(ctx, model.DrawRecord{DrawNumber: 7, Numbers: []int{1, 2, 3, 4, 5}}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if err := s.Reset(ctx); err != nil {
		t.Fatalf("reset: %v", err)
	}
	st, _ := s.Stats(ctx)
	if st.Draws != 0 || st.Latest != 0 {
		t.Fatalf("expect empty after reset: %+v", st)
	}
}

func TestSQLite_StatsUpdatedAtFromWrites(t *testing.T) {
	s := open(t)
	ctx := context.Background()
	st, err := s.Stats(ctx)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if !st.UpdatedAt.IsZero() {
		t.Fatalf("empty store should have zero UpdatedAt: %v", st.UpdatedAt)
	}

	before := time.Now().Truncate(time.Millisecond)
	if err := s.UpsertDraw(ctx, model.DrawRecord{DrawNumber: 7, Numbers: []int{1, 2, 3, 4, 5}}); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	after := time.Now()
	first, err := s.Stats(ctx)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if first.UpdatedAt.Before(before) || first.UpdatedAt.After(after) {
		t.Fatalf("UpdatedAt=%v not within write window [%v, %v]", first.UpdatedAt, before, after)
	}

	time.Sleep(20 * time.Millisecond)
	again, _ := s.Stats(ctx)
	if !again.UpdatedAt.Equal(first.UpdatedAt) {
		t.Fatalf("reading stats moved UpdatedAt: %v -> %v", first.UpdatedAt, again.UpdatedAt)
	}
}
