// 包 scrape 提供开奖页面解析：
// - 依据 rules.yaml 预设的 CSS 选择器定位表格行/结果区块与号码元素
// - 号码选择器支持 "||" 多方案回退
// - 期号/日期用正则从文本中提取
package scrape

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"go-quina-board/internal/fetch"
	"go-quina-board/internal/model"
	"go-quina-board/internal/rules"
)

// ParseResultsPage 抓取并解析开奖页面。先解析表格行，再用区块补充未出现的期号。
func ParseResultsPage(ctx context.Context, cl *fetch.Client, pageURL string, rp rules.ResultsPage, now time.Time) ([]model.DrawRecord, error) {
	resp, err := cl.Get(ctx, pageURL)
	if err != nil {
		return nil, fmt.Errorf("GET results page %s: %w", pageURL, err)
	}
	defer resp.Body.Close()
	return ParseResultsHTML(io.LimitReader(resp.Body, 4<<20), rp, now)
}

// ParseResultsHTML 从 HTML 中解析开奖记录，按页面顺序返回，期号去重。
func ParseResultsHTML(r io.Reader, rp rules.ResultsPage, now time.Time) ([]model.DrawRecord, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse results html: %w", err)
	}
	var out []model.DrawRecord
	seen := map[model.DrawID]bool{}
	add := func(rec model.DrawRecord, ok bool) {
		if !ok || seen[rec.DrawNumber] {
			return
		}
		seen[rec.DrawNumber] = true
		out = append(out, rec)
	}
	if rp.Row != "" {
		doc.Find(rp.Row).Each(func(_ int, s *goquery.Selection) {
			add(parseScope(s, rp.Ball, false, now))
		})
	}
	if rp.Block != "" {
		doc.Find(rp.Block).Each(func(_ int, s *goquery.Selection) {
			add(parseScope(s, rp.Ball, true, now))
		})
	}
	return out, nil
}

// parseScope 解析单个行/区块：期号 + 5 个号码 + 日期。
func parseScope(s *goquery.Selection, ballExpr string, loose bool, now time.Time) (model.DrawRecord, bool) {
	text := s.Text()
	draw, ok := DrawNumber(text, loose)
	if !ok {
		return model.DrawRecord{}, false
	}
	balls, ok := collectBalls(ballTexts(s, ballExpr))
	if !ok {
		return model.DrawRecord{}, false
	}
	return model.DrawRecord{DrawNumber: draw, Date: DrawDate(text, now), Numbers: balls}, true
}

// ballTexts 依次尝试 "||" 分隔的选择器，返回第一个有命中的选择器对应的文本。
func ballTexts(scope *goquery.Selection, expr string) []string {
	for _, sel := range strings.Split(expr, "||") {
		sel = strings.TrimSpace(sel)
		if sel == "" {
			continue
		}
		found := scope.Find(sel)
		if found.Length() == 0 {
			continue
		}
		return found.Map(func(_ int, el *goquery.Selection) string {
			return strings.TrimSpace(el.Text())
		})
	}
	return nil
}
