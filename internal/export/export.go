// 包 export 负责本地缓存文件 results.json 的读写：
// - 极简模式：抓取结果直接写文件
// - 正常模式：从 SQLite 查询后导出
package export

import (
	"context"
	"fmt"
	"os"

	"go-quina-board/internal/model"
	"go-quina-board/internal/store"
)

// ToJSON 从库中取最新 limit 期并写入 JSON 文件。
func ToJSON(ctx context.Context, s *store.SQLite, source, path string, limit int) error {
	draws, err := s.ListDraws(ctx, limit)
	if err != nil {
		return fmt.Errorf("list draws: %w", err)
	}
	return ToJSONData(ctx, draws, source, path)
}

// StoreSource 以 SQLite 为本地缓存来源（供 /data/results.json 使用）。
type StoreSource struct {
	Store  *store.SQLite
	Source string
	Limit  int
}

func (s StoreSource) Load(ctx context.Context) (model.ResultsFile, error) {
	draws, err := s.Store.ListDraws(ctx, s.Limit)
	if err != nil {
		return model.ResultsFile{}, fmt.Errorf("list draws: %w", err)
	}
	st, err := s.Store.Stats(ctx)
	if err != nil {
		return model.ResultsFile{}, fmt.Errorf("stats: %w", err)
	}
	if draws == nil {
		draws = []model.DrawRecord{}
	}
	out := model.ResultsFile{Source: s.Source, Results: draws}
	if !st.UpdatedAt.IsZero() {
		out.LastUpdated = &st.UpdatedAt
	}
	return out, nil
}

// FileSource 以 results.json 文件为本地缓存来源；文件不存在时返回 os.ErrNotExist。
type FileSource struct {
	Path string
}

func (s FileSource) Load(context.Context) (model.ResultsFile, error) {
	return ReadFile(s.Path)
}

// ReadFile 读取并解析 results.json。
func ReadFile(path string) (model.ResultsFile, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return model.ResultsFile{}, fmt.Errorf("read %s: %w", path, err)
	}
	f, err := model.DecodeResultsFile(b)
	if err != nil {
		return model.ResultsFile{}, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}
