// 包 feeds 使用 gofeed 解析开奖结果订阅（RSS/Atom/JSON Feed），
// 每个条目的标题/描述中包含期号与 5 个号码。
package feeds

import (
	"context"
	"fmt"
	"html"
	"regexp"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"go-quina-board/internal/fetch"
	"go-quina-board/internal/model"
	"go-quina-board/internal/scrape"
)

var tagRe = regexp.MustCompile(`<[^>]*>`)

// ParseResultsFeed 抓取订阅并转换为开奖记录；无法识别的条目跳过。
func ParseResultsFeed(ctx context.Context, cl *fetch.Client, feedURL string, now time.Time) ([]model.DrawRecord, error) {
	reqCtx, cancel := context.WithTimeout(ctx, 25*time.Second)
	defer cancel()
	// gofeed 不直接接收自定义 http.Client，先用自定义客户端抓取再交给 gofeed 解析
	resp, err := cl.Get(reqCtx, feedURL)
	if err != nil {
		return nil, fmt.Errorf("GET feed %s: %w", feedURL, err)
	}
	defer resp.Body.Close()
	feed, err := gofeed.NewParser().Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse feed %s: %w", feedURL, err)
	}
	out := make([]model.DrawRecord, 0, len(feed.Items))
	seen := map[model.DrawID]bool{}
	for _, it := range feed.Items {
		rec, ok := itemRecord(it, now)
		if !ok || seen[rec.DrawNumber] {
			continue
		}
		seen[rec.DrawNumber] = true
		out = append(out, rec)
	}
	return out, nil
}

// itemRecord 标题取期号，描述（去掉 HTML 与日期片段）取号码；日期优先用发布时间。
func itemRecord(it *gofeed.Item, now time.Time) (model.DrawRecord, bool) {
	title := strings.TrimSpace(it.Title)
	body := plain(it.Description)
	if body == "" {
		body = plain(it.Content)
	}
	draw, ok := scrape.DrawNumber(title, true)
	if !ok {
		if draw, ok = scrape.DrawNumber(body, false); !ok {
			return model.DrawRecord{}, false
		}
	}
	ballsText := body
	if span := scrape.DateSpan(ballsText); span != nil {
		ballsText = ballsText[:span[0]] + " " + ballsText[span[1]:]
	}
	balls, ok := scrape.BallsFromText(ballsText)
	if !ok {
		return model.DrawRecord{}, false
	}
	date := scrape.DrawDate(title+" "+body, now)
	if it.PublishedParsed != nil {
		date = it.PublishedParsed.Format("2006-01-02")
	}
	return model.DrawRecord{DrawNumber: draw, Date: date, Numbers: balls}, true
}

func plain(s string) string {
	return strings.TrimSpace(html.UnescapeString(tagRe.ReplaceAllString(s, " ")))
}
