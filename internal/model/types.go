// 包 model 定义开奖数据模型（开奖记录/结果集/本地缓存文件结构）。
package model

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// BallsPerDraw 每期开奖号码个数（Quina 固定 5 个）。
const BallsPerDraw = 5

// DrawID 为期号；反序列化时同时接受数字与数字字符串，统一为 int 后严格比较。
type DrawID int

// UnmarshalJSON 兼容 1234 / "1234" 两种写法。
func (d *DrawID) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "null" {
		*d = 0
		return nil
	}
	s = strings.Trim(s, `"`)
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return fmt.Errorf("draw number %s: %w", string(b), err)
	}
	*d = DrawID(n)
	return nil
}

// DrawRecord 表示一期开奖结果。
type DrawRecord struct {
	DrawNumber DrawID `json:"drawNumber"`
	Date       string `json:"date"` // YYYY-MM-DD
	Numbers    []int  `json:"numbers"`
}

// Valid 期号为正且恰好 5 个号码。
func (r DrawRecord) Valid() bool {
	return r.DrawNumber > 0 && len(r.Numbers) == BallsPerDraw
}

// ResultSet 为一轮刷新得到的结果集合，每轮重建，不跨轮修改。
type ResultSet struct {
	Results     []DrawRecord
	RefreshedAt time.Time
}

// ResultsFile 为本地缓存 results.json 的顶层结构。
type ResultsFile struct {
	LastUpdated *time.Time   `json:"lastUpdated"`
	Source      string       `json:"source,omitempty"`
	Results     []DrawRecord `json:"results"`
}

// DecodeResultsFile 解析本地缓存；非法记录直接丢弃。
func DecodeResultsFile(b []byte) (ResultsFile, error) {
	var raw struct {
		LastUpdated json.RawMessage   `json:"lastUpdated"`
		Source      json.RawMessage   `json:"source"`
		Results     []json.RawMessage `json:"results"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return ResultsFile{}, fmt.Errorf("decode results file: %w", err)
	}
	out := ResultsFile{LastUpdated: parseUpdated(raw.LastUpdated), Results: make([]DrawRecord, 0, len(raw.Results))}
	_ = json.Unmarshal(raw.Source, &out.Source)
	for _, item := range raw.Results {
		var r DrawRecord
		if err := json.Unmarshal(item, &r); err != nil {
			continue
		}
		if !r.Valid() {
			continue
		}
		out.Results = append(out.Results, r)
	}
	return out, nil
}

// 可接受的 lastUpdated 写法；均无法解析时视为缺失。
var updatedLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// parseUpdated 宽松解析 lastUpdated，任何异常都返回 nil，不影响 results。
func parseUpdated(b json.RawMessage) *time.Time {
	var s string
	if len(b) == 0 || json.Unmarshal(b, &s) != nil {
		return nil
	}
	s = strings.TrimSpace(s)
	for _, layout := range updatedLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}
