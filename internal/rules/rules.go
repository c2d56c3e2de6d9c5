// 包 rules 负责加载并提供开奖页面的解析规则（rules.yaml），
// 以预设名（如 default/megasena）组织 CSS 选择器，供 scrape 包使用。
package rules

import (
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Rules 表示全部规则集合：键为预设名，值为具体规则。
type Rules struct {
	Presets map[string]Preset `yaml:",inline"`
}

// Preset 为单个站点预设的解析规则集合。
type Preset struct {
	ResultsPage *ResultsPage `yaml:"results_page"`
}

// ResultsPage 描述开奖页面的选择器：
// - row：表格行，每行一期
// - block：卡片/区块容器（行解析之外的补充）
// - ball：号码元素；可用 "||" 连接多个候选，取第一个有命中的
type ResultsPage struct {
	Row   string `yaml:"row"`
	Block string `yaml:"block"`
	Ball  string `yaml:"ball"`
}

// DefaultResultsPage 内置默认选择器，rules.yaml 缺失时使用。
var DefaultResultsPage = ResultsPage{
	Row:   "table tr",
	Block: `div[class*="result"], div[class*="draw"]`,
	Ball:  `li[class*="ball"]||span[class*="number"], div[class*="number"], span[class*="ball"], div[class*="ball"]`,
}

// Load 从文件加载 YAML 到 Rules.Presets。
func Load(path string) (*Rules, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open rules %s: %w", path, err)
	}
	defer f.Close()
	b, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("read rules %s: %w", path, err)
	}
	var r Rules
	if err := yaml.Unmarshal(b, &r.Presets); err != nil {
		return nil, fmt.Errorf("unmarshal rules %s: %w", path, err)
	}
	return &r, nil
}

// GetPreset 按名称获取预设（不区分大小写），若为空或不存在则回退到 "default"。
func (r *Rules) GetPreset(name string) (Preset, bool) {
	if r == nil || len(r.Presets) == 0 {
		return Preset{}, false
	}
	if name == "" {
		name = "default"
	}
	if p, ok := r.Presets[name]; ok {
		return p, true
	}
	for k, v := range r.Presets {
		if strings.EqualFold(k, name) {
			return v, true
		}
	}
	if p, ok := r.Presets["default"]; ok {
		return p, true
	}
	return Preset{}, false
}

// ResultsPageFor 返回预设的开奖页选择器，未配置的字段用默认值补齐。
func (r *Rules) ResultsPageFor(name string) ResultsPage {
	out := DefaultResultsPage
	p, ok := r.GetPreset(name)
	if !ok || p.ResultsPage == nil {
		return out
	}
	if p.ResultsPage.Row != "" {
		out.Row = p.ResultsPage.Row
	}
	if p.ResultsPage.Block != "" {
		out.Block = p.ResultsPage.Block
	}
	if p.ResultsPage.Ball != "" {
		out.Ball = p.ResultsPage.Ball
	}
	return out
}
