// 包 web 提供看板的 HTTP 入口（gin）：页面、手动刷新、状态与本地缓存数据。
package web

import (
	"context"
	"embed"
	"errors"
	"html/template"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"

	"go-quina-board/internal/aggregate"
	"go-quina-board/internal/logx"
	"go-quina-board/internal/model"
)

//go:embed templates/*.html
var templateFS embed.FS

const pageTitle = "Quina Results"

// LocalSource 提供本地缓存内容（文件或 SQLite 导出）。
type LocalSource interface {
	Load(ctx context.Context) (model.ResultsFile, error)
}

// Refresher 为刷新入口，由 aggregate.Runner 实现。
type Refresher interface {
	Refresh(ctx context.Context) (model.ResultSet, error)
	Display() *aggregate.Display
}

// HTTPHandler 持有处理请求所需的依赖。
type HTTPHandler struct {
	runner    Refresher
	local     LocalSource
	templates *template.Template
}

// ParseTemplates 解析内嵌页面布局。
func ParseTemplates() (*template.Template, error) {
	return template.ParseFS(templateFS, "templates/*.html")
}

func NewHTTPHandler(runner Refresher, local LocalSource, templates *template.Template) *HTTPHandler {
	return &HTTPHandler{runner: runner, local: local, templates: templates}
}

// RegisterRoutes 注册全部路由。
func (h *HTTPHandler) RegisterRoutes(router *gin.Engine) {
	router.GET("/", h.ShowBoard)
	router.POST("/refresh", h.TriggerRefresh)
	router.GET("/status", h.Status)
	router.GET("/data/results.json", h.LocalData)
}

// ShowBoard 渲染当前展示状态；页面每 RefreshInterval 自动重新加载。
func (h *HTTPHandler) ShowBoard(c *gin.Context) {
	data := gin.H{
		"Title":          pageTitle,
		"RefreshSeconds": int(aggregate.RefreshInterval.Seconds()),
		"Snap":           h.runner.Display().Snapshot(),
	}
	c.Header("Content-Type", "text/html; charset=utf-8")
	if err := h.templates.ExecuteTemplate(c.Writer, "layout.html", data); err != nil {
		logx.Errorf("页面渲染失败：%v", err)
		c.String(http.StatusInternalServerError, "Template rendering error")
	}
}

// TriggerRefresh 立即执行一轮刷新（进行中的刷新会被合并），完成后跳回页面。
// 刷新不随请求取消，客户端断开后本轮仍会完成。
func (h *HTTPHandler) TriggerRefresh(c *gin.Context) {
	if _, err := h.runner.Refresh(context.WithoutCancel(c.Request.Context())); err != nil {
		logx.Warnf("手动刷新失败：%v", err)
	}
	c.Redirect(http.StatusSeeOther, "/")
}

// Status 返回按钮状态、最近刷新时间与记录数。
func (h *HTTPHandler) Status(c *gin.Context) {
	c.JSON(http.StatusOK, h.runner.Display().Snapshot())
}

// LocalData 输出本地缓存 results.json，禁止缓存。
func (h *HTTPHandler) LocalData(c *gin.Context) {
	c.Header("Cache-Control", "no-store")
	f, err := h.local.Load(c.Request.Context())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			c.JSON(http.StatusNotFound, gin.H{"error": "results not available"})
			return
		}
		logx.Errorf("读取本地缓存失败：%v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load results"})
		return
	}
	c.JSON(http.StatusOK, f)
}
