package feeds

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"go-quina-board/internal/fetch"
	"go-quina-board/internal/logx"
)

// DiscoverFeed 从结果页面的 <link rel="alternate"> 中找出订阅地址。
// 配置的 feed 来源若指向普通页面（而非订阅本身）时使用。
func DiscoverFeed(ctx context.Context, cl *fetch.Client, pageURL string) (string, error) {
	resp, err := cl.Get(ctx, pageURL)
	if err != nil {
		return "", fmt.Errorf("GET page %s: %w", pageURL, err)
	}
	defer resp.Body.Close()
	doc, err := goquery.NewDocumentFromReader(io.LimitReader(resp.Body, 2<<20))
	if err != nil {
		return "", fmt.Errorf("parse html: %w", err)
	}
	var found string
	doc.Find("link").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		rel, _ := s.Attr("rel")
		t, _ := s.Attr("type")
		href, _ := s.Attr("href")
		lt := strings.ToLower(t)
		if href == "" || !strings.Contains(strings.ToLower(rel), "alternate") {
			return true
		}
		if strings.Contains(lt, "rss") || strings.Contains(lt, "atom") || strings.Contains(lt, "json") {
			found = joinURL(pageURL, href)
			return false
		}
		// 缺少 type 时按后缀判断
		if lt == "" {
			lh := strings.ToLower(href)
			if strings.HasSuffix(lh, ".xml") || strings.HasSuffix(lh, ".rss") || strings.HasSuffix(lh, ".atom") {
				found = joinURL(pageURL, href)
				return false
			}
		}
		return true
	})
	if found == "" {
		return "", fmt.Errorf("no feed discovered for %s", pageURL)
	}
	logx.Debugf("从 <link> 发现订阅：%s", found)
	return found, nil
}

// joinURL 将相对路径解析为绝对 URL。
func joinURL(base, ref string) string {
	if strings.HasPrefix(ref, "http") {
		return ref
	}
	u, err := url.Parse(base)
	if err != nil {
		return base + ref
	}
	ru, err := url.Parse(ref)
	if err != nil {
		return base + ref
	}
	return u.ResolveReference(ru).String()
}
