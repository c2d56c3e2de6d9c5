// 包 store 提供本地缓存的 SQLite 实现（正常模式），包含建表/写入/查询/裁剪。
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"go-quina-board/internal/model"
)

// SQLite 封装 *sql.DB，基于 modernc.org/sqlite（纯 Go 实现）。
type SQLite struct {
	db *sql.DB
}

// Stats 缓存概况。
type Stats struct {
	Draws     int
	Latest    model.DrawID
	UpdatedAt time.Time
}

// OpenSQLite 打开 SQLite 数据库并执行自动迁移。
func OpenSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)
	s := &SQLite{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *SQLite) Close() error { return s.db.Close() }

func (s *SQLite) migrate() error {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS draws (
        draw_number INTEGER PRIMARY KEY,
        date TEXT NOT NULL DEFAULT '',
        numbers TEXT NOT NULL,
        updated_at INTEGER NOT NULL DEFAULT 0
    );`)
	if err != nil {
		return fmt.Errorf("exec migrate: %w", err)
	}
	return nil
}

// Reset 清空开奖表（不删除数据库文件）。
func (s *SQLite) Reset(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM draws`); err != nil {
		return fmt.Errorf("delete draws: %w", err)
	}
	return nil
}

// UpsertDraw 插入或更新一期（期号唯一）。
func (s *SQLite) UpsertDraw(ctx context.Context, r model.DrawRecord) error {
	if !r.Valid() {
		return errors.New("draw record requires positive draw number and 5 numbers")
	}
	_, err := s.db.ExecContext(ctx, `INSERT INTO draws(draw_number, date, numbers, updated_at)
        VALUES(?,?,?,?)
        ON CONFLICT(draw_number) DO UPDATE SET date=excluded.date, numbers=excluded.numbers, updated_at=excluded.updated_at`,
		int(r.DrawNumber), r.Date, joinNumbers(r.Numbers), time.Now().UnixMilli())
	if err != nil {
		return fmt.Errorf("upsert draw %d: %w", r.DrawNumber, err)
	}
	return nil
}

// ListDraws 按期号倒序返回，limit<=0 表示不限制。
func (s *SQLite) ListDraws(ctx context.Context, limit int) ([]model.DrawRecord, error) {
	q := `SELECT draw_number, date, numbers FROM draws ORDER BY draw_number DESC`
	args := []any{}
	if limit > 0 {
		q += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query draws: %w", err)
	}
	defer rows.Close()
	var out []model.DrawRecord
	for rows.Next() {
		var (
			n       int
			r       model.DrawRecord
			numbers string
		)
		if err := rows.Scan(&n, &r.Date, &numbers); err != nil {
			return nil, fmt.Errorf("scan draws: %w", err)
		}
		r.DrawNumber = model.DrawID(n)
		if r.Numbers, err = splitNumbers(numbers); err != nil {
			return nil, fmt.Errorf("draw %d: %w", n, err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate draws: %w", err)
	}
	return out, nil
}

// Trim 仅保留期号最大的 keep 期；keep<=0 时不处理。
func (s *SQLite) Trim(ctx context.Context, keep int) error {
	if keep <= 0 {
		return nil
	}
	_, err := s.db.ExecContext(ctx, `DELETE FROM draws WHERE draw_number NOT IN (
        SELECT draw_number FROM draws ORDER BY draw_number DESC LIMIT ?)`, keep)
	if err != nil {
		return fmt.Errorf("trim draws: %w", err)
	}
	return nil
}

// Stats 统计期数、最新期号与最近写入时间（空表时 UpdatedAt 为零值）。
func (s *SQLite) Stats(ctx context.Context) (Stats, error) {
	var st Stats
	var latest, updated sql.NullInt64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(1), MAX(draw_number), MAX(updated_at) FROM draws`).Scan(&st.Draws, &latest, &updated); err != nil {
		return st, fmt.Errorf("count draws: %w", err)
	}
	if latest.Valid {
		st.Latest = model.DrawID(latest.Int64)
	}
	if updated.Valid && updated.Int64 > 0 {
		st.UpdatedAt = time.UnixMilli(updated.Int64).UTC()
	}
	return st, nil
}

func joinNumbers(ns []int) string {
	parts := make([]string, len(ns))
	for i, n := range ns {
		parts[i] = strconv.Itoa(n)
	}
	return strings.Join(parts, ",")
}

func splitNumbers(s string) ([]int, error) {
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	out := make([]int, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("parse numbers %q: %w", s, err)
		}
		out = append(out, n)
	}
	return out, nil
}
