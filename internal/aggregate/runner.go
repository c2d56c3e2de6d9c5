// 包 aggregate 负责主流程编排：
// - Runner：读取本地缓存与远端表格、合并、渲染、更新展示状态，并按固定周期刷新
// - Updater：抓取开奖页面/订阅，更新本地缓存（results.json 或 SQLite）
package aggregate

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"go-quina-board/internal/config"
	"go-quina-board/internal/fetch"
	"go-quina-board/internal/logx"
	"go-quina-board/internal/model"
	"go-quina-board/internal/render"
	"go-quina-board/internal/sheet"
)

// RefreshInterval 周期刷新间隔，运行期不可修改。
const RefreshInterval = 5 * time.Minute

// Renderer 为 Runner 所需的渲染能力。
type Renderer interface {
	Render(model.ResultSet) (render.Fragments, error)
	Error(error) template.HTML
}

// Runner 刷新执行器：持有配置/HTTP 客户端/渲染器/展示状态。
// 并发触发的刷新经 singleflight 合并：进行中的一轮结束前，新的触发等待并共享其结果。
type Runner struct {
	cfg      *config.Config
	fetch    *fetch.Client
	render   Renderer
	display  *Display
	group    singleflight.Group
	now      func() time.Time
	interval time.Duration

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New 创建 Runner。
func New(cfg *config.Config, cl *fetch.Client, rd Renderer) *Runner {
	return &Runner{
		cfg:      cfg,
		fetch:    cl,
		render:   rd,
		display:  NewDisplay(),
		now:      time.Now,
		interval: RefreshInterval,
	}
}

// Display 返回展示状态（只读使用 Snapshot）。
func (r *Runner) Display() *Display { return r.display }

// Refresh 执行一轮刷新；若已有一轮在进行，则等待并返回该轮结果。
func (r *Runner) Refresh(ctx context.Context) (model.ResultSet, error) {
	v, err, shared := r.group.Do("refresh", func() (any, error) {
		return r.Run(ctx)
	})
	if shared {
		logx.Debugf("刷新请求已合并到进行中的一轮")
	}
	rs, _ := v.(model.ResultSet)
	return rs, err
}

// Run 执行一轮：本地缓存 → 远端表格 → 合并 → 渲染 → 更新刷新时间。
// 数据源失败按空集合处理；只有渲染失败（或 panic）才进入 Failure 并展示错误块。
func (r *Runner) Run(ctx context.Context) (rs model.ResultSet, err error) {
	r.display.beginFetch()
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("refresh panic: %v", p)
		}
		if err != nil {
			logx.Errorf("刷新失败：%v", err)
			r.display.fail(r.render.Error(err))
			r.display.endFetch(StateFailure)
			return
		}
		r.display.endFetch(StateSuccess)
	}()

	local := r.loadLocal(ctx)
	remote := r.loadRemote(ctx)
	rs = model.ResultSet{Results: Merge(local, remote), RefreshedAt: r.now()}
	frag, err := r.render.Render(rs)
	if err != nil {
		return rs, fmt.Errorf("render results: %w", err)
	}
	r.display.apply(rs, frag)
	logx.Infof("刷新完成：本地=%d 远端=%d 合并后=%d", len(local), len(remote), len(rs.Results))
	return rs, nil
}

// loadLocal 读取本地缓存（带防缓存参数）；失败或格式错误视为空集合。
func (r *Runner) loadLocal(ctx context.Context) []model.DrawRecord {
	u, err := fetch.CacheBust(r.cfg.Local.URL, r.now())
	if err != nil {
		logx.Warnf("本地缓存地址无效：%v", err)
		return nil
	}
	b, err := r.fetch.GetBytes(ctx, u)
	if err != nil {
		logx.Warnf("读取本地缓存失败：%s 错误=%v", r.cfg.Local.URL, err)
		return nil
	}
	f, err := model.DecodeResultsFile(b)
	if err != nil {
		logx.Warnf("本地缓存格式错误：%v", err)
		return nil
	}
	return f.Results
}

// loadRemote 读取在线表格 CSV；任何失败仅记录日志并返回空集合。
func (r *Runner) loadRemote(ctx context.Context) []model.DrawRecord {
	if r.cfg.Remote.CSVURL == "" {
		logx.Debugf("未配置远端表格，跳过")
		return nil
	}
	b, err := r.fetch.GetBytes(ctx, r.cfg.Remote.CSVURL)
	if err != nil {
		logx.Warnf("读取远端表格失败：%v", err)
		return nil
	}
	return sheet.ExtractRecords(string(b))
}

// Start 挂载：立即刷新一次，之后每 RefreshInterval 刷新一次，直到 ctx 取消或 Stop。
func (r *Runner) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	r.cancel = cancel
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		ticker := time.NewTicker(r.interval)
		defer ticker.Stop()
		r.tick(ctx)
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				r.tick(ctx)
			}
		}
	}()
}

func (r *Runner) tick(ctx context.Context) {
	if _, err := r.Refresh(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logx.Warnf("周期刷新失败：%v", err)
	}
}

// Stop 卸载：停止周期刷新并等待后台协程退出。
func (r *Runner) Stop() {
	if r.cancel != nil {
		r.cancel()
	}
	r.wg.Wait()
}
