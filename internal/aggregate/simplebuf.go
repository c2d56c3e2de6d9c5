package aggregate

import (
	"sync"

	"go-quina-board/internal/model"
)

// DrawBuffer 收集多个抓取来源的结果：按期号去重，先到者保留，顺序为首次出现顺序。
type DrawBuffer struct {
	mu    sync.Mutex
	order []model.DrawID
	draws map[model.DrawID]model.DrawRecord
}

func NewDrawBuffer() *DrawBuffer {
	return &DrawBuffer{draws: make(map[model.DrawID]model.DrawRecord)}
}

// AddDraws 加入一批记录，非法记录忽略。
func (b *DrawBuffer) AddDraws(list []model.DrawRecord) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, r := range list {
		if !r.Valid() {
			continue
		}
		if _, ok := b.draws[r.DrawNumber]; ok {
			continue
		}
		b.order = append(b.order, r.DrawNumber)
		b.draws[r.DrawNumber] = r
	}
}

// Snapshot 返回副本。
func (b *DrawBuffer) Snapshot() []model.DrawRecord {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]model.DrawRecord, 0, len(b.order))
	for _, id := range b.order {
		out = append(out, b.draws[id])
	}
	return out
}
