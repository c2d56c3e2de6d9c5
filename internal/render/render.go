// 包 render 将结果集渲染为页面片段：最新一期 + 往期卡片网格。
package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"sort"
	"strings"
	"time"

	"go-quina-board/internal/model"
)

//go:embed templates/*.html
var templateFS embed.FS

// 显示用格式（单一语言环境）。
const (
	DisplayDateLayout = "02 Jan 2006"
	RefreshedLayout   = "02 Jan 2006 15:04:05"
	UnknownDate       = "Unknown"
)

// Fragments 为一次渲染的产物。Refreshed 为空表示未提供时间戳，调用方应保留原值。
type Fragments struct {
	Latest    template.HTML
	Previous  template.HTML
	Refreshed string
}

// Renderer 持有已解析的片段模板。
type Renderer struct {
	tmpl *template.Template
}

// New 解析内嵌模板。
func New() (*Renderer, error) {
	t, err := template.New("fragments").Funcs(template.FuncMap{
		"formatDate": FormatDate,
		"ball":       func(n int) string { return fmt.Sprintf("%02d", n) },
	}).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse fragment templates: %w", err)
	}
	return &Renderer{tmpl: t}, nil
}

// Render 渲染结果集：空集合输出占位且不输出网格；否则按期号倒序，首条为最新一期。
func (r *Renderer) Render(rs model.ResultSet) (Fragments, error) {
	var out Fragments
	if !rs.RefreshedAt.IsZero() {
		out.Refreshed = rs.RefreshedAt.Format(RefreshedLayout)
	}
	if len(rs.Results) == 0 {
		html, err := r.exec("empty", nil)
		if err != nil {
			return Fragments{}, err
		}
		out.Latest = html
		return out, nil
	}
	sorted := SortDesc(rs.Results)
	latest, err := r.exec("latest", sorted[0])
	if err != nil {
		return Fragments{}, err
	}
	previous, err := r.exec("previous", sorted[1:])
	if err != nil {
		return Fragments{}, err
	}
	out.Latest = latest
	out.Previous = previous
	return out, nil
}

// Error 渲染错误提示块，替换结果区域。
func (r *Renderer) Error(cause error) template.HTML {
	msg := "unexpected error"
	if cause != nil {
		msg = cause.Error()
	}
	html, err := r.exec("error", msg)
	if err != nil {
		return template.HTML(`<div class="error">Could not load results. Please reload the page.</div>`)
	}
	return html
}

func (r *Renderer) exec(name string, data any) (template.HTML, error) {
	var buf bytes.Buffer
	if err := r.tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("execute template %s: %w", name, err)
	}
	return template.HTML(buf.String()), nil
}

// SortDesc 返回按期号倒序的副本（稳定排序），不修改入参。
func SortDesc(in []model.DrawRecord) []model.DrawRecord {
	out := make([]model.DrawRecord, len(in))
	copy(out, in)
	sort.SliceStable(out, func(i, j int) bool { return out[i].DrawNumber > out[j].DrawNumber })
	return out
}

// FormatDate 将 YYYY-MM-DD 格式化为 "02 Jan 2006"；空值显示 Unknown，解析失败原样返回。
func FormatDate(canonical string) string {
	s := strings.TrimSpace(canonical)
	if s == "" {
		return UnknownDate
	}
	for _, layout := range []string{"2006-01-02", "2006-1-2"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format(DisplayDateLayout)
		}
	}
	return canonical
}
