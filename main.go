// 命令行入口：
// - 解析 flags 与 settings.yaml/rules.yaml
// - 初始化日志、HTTP 客户端、数据库
// - 默认启动看板服务（页面 + 定时刷新）；-scrape 抓取开奖来源更新本地缓存后退出
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"go-quina-board/internal/aggregate"
	"go-quina-board/internal/config"
	"go-quina-board/internal/export"
	"go-quina-board/internal/fetch"
	"go-quina-board/internal/logx"
	"go-quina-board/internal/render"
	"go-quina-board/internal/rules"
	"go-quina-board/internal/store"
	"go-quina-board/internal/web"
)

func main() {
	var (
		configPath = flag.String("config", "settings.yaml", "path to settings.yaml")
		rulesPath  = flag.String("rules", "rules.yaml", "path to rules.yaml (optional)")
		scrapeOnce = flag.Bool("scrape", false, "scrape SCRAPE sources into the local cache and exit")
		reset      = flag.Bool("reset", false, "clear the sqlite cache on start (same as RESET_ON_START)")
	)
	flag.Parse()

	// 1) 加载配置与规则
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	var rl *rules.Rules
	if *rulesPath != "" {
		if r, err := rules.Load(*rulesPath); err == nil {
			rl = r
		} else {
			log.Printf("load rules failed: %v", err)
		}
	}
	// 2) 初始化日志：级别/格式/语言/颜色
	logx.Init(cfg.LogLevel, cfg.LogFormat, cfg.LogLocale, cfg.LogColor)

	// 3) 初始化 HTTP 客户端（含代理与重试）
	cl, err := fetch.New(fetch.Options{
		ProxyHTTP:  cfg.Proxy.HTTP,
		ProxyHTTPS: cfg.Proxy.HTTPS,
		Timeout:    cfg.Fetch.Timeout(),
		Retry:      cfg.Fetch.Retry,
	})
	if err != nil {
		log.Fatalf("http client: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 4) 数据存储：极简模式不打开数据库；正常模式打开并按需重置
	var st *store.SQLite
	if !cfg.SimpleMode {
		st, err = store.OpenSQLite(cfg.Database.DSN)
		if err != nil {
			log.Fatalf("open db: %v", err)
		}
		defer st.Close()
		if cfg.ResetOnStart || *reset {
			if err := st.Reset(ctx); err != nil {
				logx.Warnf("启动清理数据库失败：%v", err)
			} else {
				logx.Infof("已清理数据库表（draws）")
			}
		}
	} else if cfg.ResetOnStart || *reset {
		logx.Infof("极简模式：跳过数据库打开与清理")
	}

	if *scrapeOnce {
		os.Exit(runScrape(ctx, cfg, st, cl, rl))
	}
	if err := serve(ctx, cfg, st, cl); err != nil {
		logx.Errorf("服务异常退出：%v", err)
		os.Exit(1)
	}
}

// runScrape 执行一次抓取更新，返回进程退出码。
func runScrape(ctx context.Context, cfg *config.Config, st *store.SQLite, cl *fetch.Client, rl *rules.Rules) int {
	logx.Infof("开始抓取：来源=%d 极简模式=%v", len(cfg.Scrape), cfg.SimpleMode)
	rep, err := aggregate.NewUpdater(cfg, st, cl, rl).Run(ctx)
	if err != nil {
		logx.Errorf("抓取失败：%v", err)
		return 1
	}
	if len(rep.Added) > 0 {
		ids := make([]string, len(rep.Added))
		for i, id := range rep.Added {
			ids[i] = "#" + strconv.Itoa(int(id))
		}
		logx.Infof("新增 %d 期：%s", len(rep.Added), strings.Join(ids, ", "))
	} else {
		logx.Infof("没有新的开奖结果")
	}
	if rep.Latest != nil {
		logx.Infof("最新一期：#%d %s %v", rep.Latest.DrawNumber, rep.Latest.Date, rep.Latest.Numbers)
	}
	logx.Infof("已写入 %s（共 %d 期）", cfg.Local.DataFile, rep.Total)
	return 0
}

// serve 启动看板：先监听端口，再开始定时刷新（首轮会读取本服务的 /data/results.json）。
func serve(ctx context.Context, cfg *config.Config, st *store.SQLite, cl *fetch.Client) error {
	rd, err := render.New()
	if err != nil {
		return err
	}
	tmpl, err := web.ParseTemplates()
	if err != nil {
		return err
	}
	var local web.LocalSource = export.FileSource{Path: cfg.Local.DataFile}
	if st != nil {
		local = export.StoreSource{Store: st, Source: "sqlite", Limit: cfg.MaxResults}
	}

	runner := aggregate.New(cfg, cl, rd)
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())
	web.NewHTTPHandler(runner, local, tmpl).RegisterRoutes(router)

	ln, err := net.Listen("tcp", cfg.Listen)
	if err != nil {
		return err
	}
	srv := &http.Server{Handler: router, ReadHeaderTimeout: 10 * time.Second}
	errc := make(chan error, 1)
	go func() { errc <- srv.Serve(ln) }()
	logx.Infof("看板已启动：http://%s", ln.Addr())

	runner.Start(ctx)
	defer runner.Stop()

	select {
	case <-ctx.Done():
		logx.Infof("收到退出信号，正在关闭")
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
