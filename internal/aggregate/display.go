package aggregate

import (
	"html/template"
	"sync"

	"go-quina-board/internal/model"
	"go-quina-board/internal/render"
)

// State 刷新状态机：Idle -> Fetching -> (Success|Failure) -> Idle。
type State string

const (
	StateIdle     State = "idle"
	StateFetching State = "fetching"
	StateSuccess  State = "success"
	StateFailure  State = "failure"
)

// 手动刷新按钮文案。
const (
	LabelRefresh = "Refresh"
	LabelLoading = "Loading…"
)

// Trigger 手动刷新按钮的可用状态与文案。
type Trigger struct {
	Enabled bool   `json:"enabled"`
	Label   string `json:"label"`
}

// Snapshot 为页面展示所需的只读副本。
type Snapshot struct {
	State         State              `json:"state"`
	Outcome       State              `json:"outcome,omitempty"`
	Trigger       Trigger            `json:"trigger"`
	LastRefreshed string             `json:"lastRefreshed,omitempty"`
	Count         int                `json:"count"`
	Results       []model.DrawRecord `json:"-"`
	Latest        template.HTML      `json:"-"`
	Previous      template.HTML      `json:"-"`
	Error         template.HTML      `json:"-"`
}

// Display 持有当前结果集派生的展示状态，由 Runner 独占写入。
type Display struct {
	mu   sync.RWMutex
	snap Snapshot
}

func NewDisplay() *Display {
	return &Display{snap: Snapshot{
		State:   StateIdle,
		Trigger: Trigger{Enabled: true, Label: LabelRefresh},
	}}
}

// Snapshot 返回当前展示状态的副本。
func (d *Display) Snapshot() Snapshot {
	d.mu.RLock()
	defer d.mu.RUnlock()
	s := d.snap
	s.Results = append([]model.DrawRecord(nil), d.snap.Results...)
	return s
}

func (d *Display) beginFetch() {
	d.mu.Lock()
	d.snap.State = StateFetching
	d.snap.Trigger = Trigger{Enabled: false, Label: LabelLoading}
	d.mu.Unlock()
}

// apply 写入新一轮结果；Refreshed 为空时保留上一次的刷新时间。
func (d *Display) apply(rs model.ResultSet, f render.Fragments) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.snap.Results = render.SortDesc(rs.Results)
	d.snap.Count = len(rs.Results)
	d.snap.Latest = f.Latest
	d.snap.Previous = f.Previous
	d.snap.Error = ""
	if f.Refreshed != "" {
		d.snap.LastRefreshed = f.Refreshed
	}
}

// fail 用错误块替换已展示内容，结果与计数一并清空。
func (d *Display) fail(block template.HTML) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.snap.Results = nil
	d.snap.Count = 0
	d.snap.Latest = ""
	d.snap.Previous = ""
	d.snap.Error = block
}

func (d *Display) endFetch(outcome State) {
	d.mu.Lock()
	d.snap.Outcome = outcome
	d.snap.State = StateIdle
	d.snap.Trigger = Trigger{Enabled: true, Label: LabelRefresh}
	d.mu.Unlock()
}
