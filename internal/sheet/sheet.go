// 包 sheet 负责解析在线表格导出的 CSV：
// - ParseRow：按逗号切分单行，双引号切换"引号内"状态
// - ExtractRecords：跳过表头，逐行校验并转换为开奖记录
package sheet

import (
	"strconv"
	"strings"

	"go-quina-board/internal/model"
)

// minFields 期号 + 日期 + 5 个号码。
const minFields = 2 + model.BallsPerDraw

// ParseRow 将一行文本切分为去除首尾空白的字段。
// 引号本身不输出；未闭合的引号不报错，直到行尾都视为引号内。
func ParseRow(line string) []string {
	var (
		fields   []string
		cur      strings.Builder
		inQuotes bool
	)
	for _, ch := range line {
		switch {
		case ch == '"':
			inQuotes = !inQuotes
		case ch == ',' && !inQuotes:
			fields = append(fields, strings.TrimSpace(cur.String()))
			cur.Reset()
		default:
			cur.WriteRune(ch)
		}
	}
	fields = append(fields, strings.TrimSpace(cur.String()))
	return fields
}

// ExtractRecords 解析完整 CSV 文本，按源行顺序返回合法记录。
// 字段不足、期号无数字、号码不足 5 个的行静默丢弃。
func ExtractRecords(text string) []model.DrawRecord {
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	out := make([]model.DrawRecord, 0, len(lines))
	for i, line := range lines {
		if i == 0 || strings.TrimSpace(line) == "" {
			continue
		}
		if rec, ok := recordFromFields(ParseRow(line)); ok {
			out = append(out, rec)
		}
	}
	return out
}

func recordFromFields(f []string) (model.DrawRecord, bool) {
	if len(f) < minFields {
		return model.DrawRecord{}, false
	}
	drawNumber, ok := digitsOnly(f[0])
	if !ok || drawNumber <= 0 {
		return model.DrawRecord{}, false
	}
	numbers := make([]int, 0, model.BallsPerDraw)
	for _, s := range f[2:minFields] {
		if n, ok := LenientAtoi(s); ok {
			numbers = append(numbers, n)
		}
	}
	if len(numbers) != model.BallsPerDraw {
		return model.DrawRecord{}, false
	}
	return model.DrawRecord{
		DrawNumber: model.DrawID(drawNumber),
		Date:       NormalizeDate(f[1]),
		Numbers:    numbers,
	}, true
}

// digitsOnly 去掉所有非数字字符后解析，例如 "#1234" -> 1234。
func digitsOnly(s string) (int, bool) {
	var b strings.Builder
	for _, ch := range s {
		if ch >= '0' && ch <= '9' {
			b.WriteRune(ch)
		}
	}
	if b.Len() == 0 {
		return 0, false
	}
	n, err := strconv.Atoi(b.String())
	if err != nil {
		return 0, false
	}
	return n, true
}

// LenientAtoi 宽松整数转换：允许前导空白与正负号，取开头连续数字，
// 之后的非数字字符被忽略（"12abc" -> 12）；开头没有数字则失败。
func LenientAtoi(s string) (int, bool) {
	s = strings.TrimLeft(s, " \t\r\n")
	sign := 1
	if s != "" && (s[0] == '+' || s[0] == '-') {
		if s[0] == '-' {
			sign = -1
		}
		s = s[1:]
	}
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == 0 {
		return 0, false
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0, false
	}
	return sign * n, true
}

// NormalizeDate 将 d/m/y 转为 y-mm-dd；不含 "/" 或段数不足时原样返回。
func NormalizeDate(raw string) string {
	raw = strings.TrimSpace(raw)
	if !strings.Contains(raw, "/") {
		return raw
	}
	parts := strings.Split(raw, "/")
	if len(parts) < 3 {
		return raw
	}
	day := strings.TrimSpace(parts[0])
	month := strings.TrimSpace(parts[1])
	year := strings.TrimSpace(parts[2])
	return year + "-" + padLeft2(month) + "-" + padLeft2(day)
}

func padLeft2(s string) string {
	if len(s) >= 2 {
		return s
	}
	return strings.Repeat("0", 2-len(s)) + s
}
