// 包 config 负责加载与校验应用配置（settings.yaml），
// 对外提供结构体 Config 及默认值/合法性校验。
package config

import (
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config 只保留当前需要的字段。
type Config struct {
	Listen       string         `yaml:"LISTEN"`
	Local        Local          `yaml:"LOCAL"`
	Remote       Remote         `yaml:"REMOTE"`
	Scrape       []ScrapeSource `yaml:"SCRAPE"`
	MaxResults   int            `yaml:"MAX_RESULTS"`
	SimpleMode   bool           `yaml:"SIMPLE_MODE"`
	ResetOnStart bool           `yaml:"RESET_ON_START"`
	Database     Database       `yaml:"DATABASE"`
	Fetch        Fetch          `yaml:"FETCH"`
	Proxy        Proxy          `yaml:"PROXY"`
	LogLevel     string         `yaml:"LOG_LEVEL"`
	LogFormat    string         `yaml:"LOG_FORMAT"` // text|json|pretty
	LogLocale    string         `yaml:"LOG_LOCALE"` // zh-CN|en
	LogColor     string         `yaml:"LOG_COLOR"`  // auto|always|never
}

// Local 本地缓存：页面通过 URL 读取，抓取模式写入 DataFile。
type Local struct {
	URL      string `yaml:"url"`
	DataFile string `yaml:"data_file"`
}

// Remote 在线表格 CSV 导出地址，留空则跳过远端。
type Remote struct {
	CSVURL string `yaml:"csv_url"`
}

// ScrapeSource 抓取来源：page 按 rules.yaml 选择器解析，feed 按 RSS/Atom 解析。
type ScrapeSource struct {
	Type  string `yaml:"type"`
	URL   string `yaml:"url"`
	Theme string `yaml:"theme"`
}

type Database struct {
	Type string `yaml:"type"` // sqlite (default)
	DSN  string `yaml:"dsn"`  // ./data.db
}

type Fetch struct {
	TimeoutSeconds int `yaml:"timeout"`
	Retry          int `yaml:"retry"`
}

type Proxy struct {
	HTTP  string `yaml:"http"`
	HTTPS string `yaml:"https"`
}

// Timeout 返回单次请求超时。
func (f Fetch) Timeout() time.Duration {
	return time.Duration(f.TimeoutSeconds) * time.Second
}

// Load 从文件读取 YAML 并反序列化为 Config，同时进行校验与默认值填充。
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config %s: %w", path, err)
	}
	defer f.Close()
	b, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("unmarshal config %s: %w", path, err)
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return &c, nil
}

// Validate 负责合法性检查与默认值设置。
func (c *Config) Validate() error {
	if c.MaxResults < 0 {
		return errors.New("MAX_RESULTS must be >= 0")
	}
	if c.Fetch.TimeoutSeconds < 0 || c.Fetch.Retry < 0 {
		return errors.New("FETCH timeout/retry must be >= 0")
	}
	for i, s := range c.Scrape {
		if s.Type != "page" && s.Type != "feed" {
			return fmt.Errorf("SCRAPE[%d]: unsupported type %q", i, s.Type)
		}
		if s.URL == "" {
			return fmt.Errorf("SCRAPE[%d]: url required", i)
		}
	}
	if c.Listen == "" {
		c.Listen = ":8080"
	}
	if c.Local.DataFile == "" {
		c.Local.DataFile = "data/results.json"
	}
	if c.Local.URL == "" {
		// 默认读取本进程提供的 /data/results.json
		_, port, err := net.SplitHostPort(c.Listen)
		if err != nil {
			return fmt.Errorf("LISTEN %q: %w", c.Listen, err)
		}
		c.Local.URL = "http://127.0.0.1:" + port + "/data/results.json"
	}
	if c.MaxResults == 0 {
		c.MaxResults = 30
	}
	if c.Database.Type == "" {
		c.Database.Type = "sqlite"
	}
	if c.Database.Type != "sqlite" {
		return fmt.Errorf("unsupported database type: %s", c.Database.Type)
	}
	if c.Database.DSN == "" {
		c.Database.DSN = "./data.db"
	}
	if c.Fetch.TimeoutSeconds == 0 {
		c.Fetch.TimeoutSeconds = 25
	}
	if c.LogFormat == "" {
		c.LogFormat = "pretty"
	}
	if c.LogLocale == "" {
		c.LogLocale = "zh-CN"
	}
	if c.LogColor == "" {
		c.LogColor = "auto"
	}
	return nil
}
