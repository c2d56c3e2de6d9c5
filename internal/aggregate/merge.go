package aggregate

import (
	"slices"
	"sort"

	"go-quina-board/internal/model"
)

// Merge 合并本地与远端记录：先按原顺序保留本地，再追加期号未出现过的远端记录。
// 冲突时本地优先；远端记录保持解析顺序，不做排序。重复合并同一远端集合不会增长。
func Merge(local, remote []model.DrawRecord) []model.DrawRecord {
	out := make([]model.DrawRecord, 0, len(local)+len(remote))
	seen := make(map[model.DrawID]struct{}, len(local)+len(remote))
	for _, group := range [][]model.DrawRecord{local, remote} {
		for _, r := range group {
			if _, ok := seen[r.DrawNumber]; ok {
				continue
			}
			seen[r.DrawNumber] = struct{}{}
			out = append(out, r)
		}
	}
	return out
}

// MergeCache 用抓取结果更新本地缓存：新期号直接加入，号码不同视为更正并覆盖；
// 结果按期号倒序并截取前 limit 条（limit<=0 不截取）。返回合并结果与实际保留的新增期号（倒序）。
func MergeCache(existing, scraped []model.DrawRecord, limit int) ([]model.DrawRecord, []model.DrawID) {
	byDraw := make(map[model.DrawID]model.DrawRecord, len(existing)+len(scraped))
	for _, r := range existing {
		byDraw[r.DrawNumber] = r
	}
	isNew := make(map[model.DrawID]bool)
	for _, r := range scraped {
		old, ok := byDraw[r.DrawNumber]
		if !ok {
			isNew[r.DrawNumber] = true
			byDraw[r.DrawNumber] = r
			continue
		}
		if !slices.Equal(old.Numbers, r.Numbers) {
			byDraw[r.DrawNumber] = r
		}
	}
	out := make([]model.DrawRecord, 0, len(byDraw))
	for _, r := range byDraw {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DrawNumber > out[j].DrawNumber })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	// 新增只统计截取后仍保留的期号
	var added []model.DrawID
	for _, r := range out {
		if isNew[r.DrawNumber] {
			added = append(added, r.DrawNumber)
		}
	}
	return out, added
}
