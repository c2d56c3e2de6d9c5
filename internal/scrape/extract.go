package scrape

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"go-quina-board/internal/model"
)

// 号码合法范围（Quina：1..80）。
const (
	MinBall = 1
	MaxBall = 80
)

var (
	drawRe      = regexp.MustCompile(`(?i)Draw\s*(?:Number)?:?\s*(\d{4,})`)
	drawLooseRe = regexp.MustCompile(`#?(\d{4,})`)
	dateRe      = regexp.MustCompile(`(\d{1,2})\s*(?:st|nd|rd|th)?\s*([A-Za-z]+)\s*(\d{4})`)
)

// DrawNumber 从文本中提取 "Draw 1234" / "Draw Number: 1234"；loose 时回退到任意 4 位以上数字。
func DrawNumber(text string, loose bool) (model.DrawID, bool) {
	m := drawRe.FindStringSubmatch(text)
	if m == nil && loose {
		m = drawLooseRe.FindStringSubmatch(text)
	}
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil || n <= 0 {
		return 0, false
	}
	return model.DrawID(n), true
}

// DrawDate 提取 "12th January 2024" 形式的日期并转为 YYYY-MM-DD；失败时使用 now 当天。
func DrawDate(text string, now time.Time) string {
	if m := dateRe.FindStringSubmatch(text); m != nil {
		for _, layout := range []string{"2 January 2006", "2 Jan 2006"} {
			if t, err := time.Parse(layout, m[1]+" "+m[2]+" "+m[3]); err == nil {
				return t.Format("2006-01-02")
			}
		}
	}
	return now.Format("2006-01-02")
}

// DateSpan 返回文本中日期片段的位置，便于从号码候选中剔除。
func DateSpan(text string) []int {
	return dateRe.FindStringIndex(text)
}

// collectBalls 保留 1..80 之间、不重复的数字；恰好 5 个时返回升序结果。
func collectBalls(texts []string) ([]int, bool) {
	seen := make(map[int]bool, len(texts))
	out := make([]int, 0, model.BallsPerDraw)
	for _, s := range texts {
		s = strings.TrimSpace(s)
		n, err := strconv.Atoi(s)
		if err != nil || n < MinBall || n > MaxBall || seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	if len(out) != model.BallsPerDraw {
		return nil, false
	}
	sort.Ints(out)
	return out, true
}

// BallsFromText 从自由文本中按空白/标点切分出号码候选。
func BallsFromText(text string) ([]int, bool) {
	tokens := strings.FieldsFunc(text, func(r rune) bool { return r < '0' || r > '9' })
	short := tokens[:0]
	for _, tk := range tokens {
		if len(tk) <= 2 {
			short = append(short, tk)
		}
	}
	return collectBalls(short)
}
