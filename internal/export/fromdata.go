package export

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go-quina-board/internal/model"
)

// ToJSONData 将内存中的开奖记录写成 results.json（带缩进），lastUpdated 为当前 UTC 时间。
// 先写临时文件再重命名，避免页面读到半截内容。
func ToJSONData(_ context.Context, draws []model.DrawRecord, source, path string) error {
	if draws == nil {
		draws = []model.DrawRecord{}
	}
	now := time.Now().UTC()
	out := model.ResultsFile{LastUpdated: &now, Source: source, Results: draws}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir %s: %w", dir, err)
		}
	}
	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("create %s: %w", tmp, err)
	}
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		f.Close()
		return fmt.Errorf("encode json to %s: %w", tmp, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("rename %s: %w", tmp, err)
	}
	return nil
}
