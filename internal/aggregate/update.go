package aggregate

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"go-quina-board/internal/config"
	"go-quina-board/internal/export"
	"go-quina-board/internal/feeds"
	"go-quina-board/internal/fetch"
	"go-quina-board/internal/logx"
	"go-quina-board/internal/model"
	"go-quina-board/internal/rules"
	"go-quina-board/internal/scrape"
	"go-quina-board/internal/store"
)

// 抓取来源并发上限。
const scrapeConcurrency = 4

// Updater 抓取开奖来源并更新本地缓存。
// 极简模式只读写 results.json；正常模式以 SQLite 为准，再导出 results.json。
type Updater struct {
	cfg   *config.Config
	rules *rules.Rules
	fetch *fetch.Client
	store *store.SQLite
	now   func() time.Time
}

// UpdateReport 一次更新的摘要。
type UpdateReport struct {
	Scraped int
	Total   int
	Added   []model.DrawID
	Latest  *model.DrawRecord
}

// NewUpdater 创建 Updater；正常模式需传入 store。
func NewUpdater(cfg *config.Config, s *store.SQLite, cl *fetch.Client, rl *rules.Rules) *Updater {
	return &Updater{cfg: cfg, store: s, fetch: cl, rules: rl, now: time.Now}
}

// Run 执行一次：抓取全部来源 → 与现有缓存合并（更正覆盖）→ 倒序截取 MAX_RESULTS → 写回。
// 所有来源均失败时返回错误且不改动缓存。
func (u *Updater) Run(ctx context.Context) (UpdateReport, error) {
	var rep UpdateReport
	if len(u.cfg.Scrape) == 0 {
		return rep, fmt.Errorf("no SCRAPE sources configured")
	}
	scraped, okSources := u.scrapeAll(ctx)
	if okSources == 0 {
		return rep, fmt.Errorf("all %d scrape sources failed", len(u.cfg.Scrape))
	}
	rep.Scraped = len(scraped)

	existing, err := u.loadExisting(ctx)
	if err != nil {
		return rep, err
	}
	logx.Infof("已有缓存 %d 期，本次抓取 %d 期", len(existing), len(scraped))
	merged, added := MergeCache(existing, scraped, u.cfg.MaxResults)
	if err := u.save(ctx, merged); err != nil {
		return rep, err
	}
	rep.Total = len(merged)
	rep.Added = added
	if len(merged) > 0 {
		latest := merged[0]
		rep.Latest = &latest
	}
	return rep, nil
}

// scrapeAll 并发抓取各来源，按配置顺序汇总；返回成功的来源数。
func (u *Updater) scrapeAll(ctx context.Context) ([]model.DrawRecord, int) {
	results := make([][]model.DrawRecord, len(u.cfg.Scrape))
	errs := make([]error, len(u.cfg.Scrape))
	sem := make(chan struct{}, scrapeConcurrency)
	var wg sync.WaitGroup
	for i, src := range u.cfg.Scrape {
		wg.Add(1)
		sem <- struct{}{}
		go func() {
			defer wg.Done()
			defer func() { <-sem }()
			results[i], errs[i] = u.scrapeOne(ctx, src)
		}()
	}
	wg.Wait()

	buf := NewDrawBuffer()
	ok := 0
	for i, src := range u.cfg.Scrape {
		if errs[i] != nil {
			logx.Warnf("抓取失败：%s 错误=%v", src.URL, errs[i])
			continue
		}
		ok++
		logx.Infof("%s 解析到 %d 期", src.URL, len(results[i]))
		buf.AddDraws(results[i])
	}
	return buf.Snapshot(), ok
}

func (u *Updater) scrapeOne(ctx context.Context, src config.ScrapeSource) ([]model.DrawRecord, error) {
	switch src.Type {
	case "page":
		return scrape.ParseResultsPage(ctx, u.fetch, src.URL, u.rules.ResultsPageFor(src.Theme), u.now())
	case "feed":
		recs, err := feeds.ParseResultsFeed(ctx, u.fetch, src.URL, u.now())
		if err == nil {
			return recs, nil
		}
		// 地址可能是普通页面，尝试从 <link> 发现订阅
		found, derr := feeds.DiscoverFeed(ctx, u.fetch, src.URL)
		if derr != nil || found == src.URL {
			return nil, err
		}
		logx.Infof("%s 不是订阅，改用发现的 %s", src.URL, found)
		return feeds.ParseResultsFeed(ctx, u.fetch, found, u.now())
	default:
		return nil, fmt.Errorf("unsupported source type %q", src.Type)
	}
}

func (u *Updater) loadExisting(ctx context.Context) ([]model.DrawRecord, error) {
	if u.store != nil && !u.cfg.SimpleMode {
		draws, err := u.store.ListDraws(ctx, 0)
		if err != nil {
			return nil, fmt.Errorf("load cached draws: %w", err)
		}
		return draws, nil
	}
	f, err := export.ReadFile(u.cfg.Local.DataFile)
	if err != nil {
		// 缓存文件缺失或损坏时从空集合开始
		logx.Warnf("读取缓存文件失败，按空缓存处理：%v", err)
		return nil, nil
	}
	return f.Results, nil
}

func (u *Updater) save(ctx context.Context, merged []model.DrawRecord) error {
	source := u.sourceLabel()
	if u.store != nil && !u.cfg.SimpleMode {
		for _, r := range merged {
			if err := u.store.UpsertDraw(ctx, r); err != nil {
				return err
			}
		}
		if err := u.store.Trim(ctx, u.cfg.MaxResults); err != nil {
			return err
		}
		return export.ToJSON(ctx, u.store, source, u.cfg.Local.DataFile, u.cfg.MaxResults)
	}
	return export.ToJSONData(ctx, merged, source, u.cfg.Local.DataFile)
}

// sourceLabel 以来源主机名拼接，写入 results.json 的 source 字段。
func (u *Updater) sourceLabel() string {
	hosts := make([]string, 0, len(u.cfg.Scrape))
	for _, s := range u.cfg.Scrape {
		if h := hostOf(s.URL); h != "" {
			hosts = append(hosts, h)
		}
	}
	return strings.Join(hosts, ",")
}

// hostOf 提取链接的主机名，失败时做字符串兜底。
func hostOf(raw string) string {
	if raw == "" {
		return ""
	}
	if u, err := url.Parse(raw); err == nil && u.Host != "" {
		return u.Host
	}
	s := raw
	if i := strings.Index(s, "://"); i >= 0 {
		s = s[i+3:]
	}
	if j := strings.IndexAny(s, "/?#"); j >= 0 {
		s = s[:j]
	}
	return s
}
