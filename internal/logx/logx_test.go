package logx_test

import (
	"bytes"
	"strings"
	"testing"

	"go-quina-board/internal/logx"
)

func TestLogx_PrettyZH_Info(t *testing.T) {
	var buf bytes.Buffer
	logx.InitWriter(&buf, "debug", "pretty", "zh-CN", "never")
	logx.Infof("刷新完成 %d 条", 3)
	if !strings.Contains(buf.String(), "[信息] 刷新完成 3 条") {
		t.Fatalf("expect zh label, got: %q", buf.String())
	}
}

func TestLogx_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logx.InitWriter(&buf, "warn", "pretty", "en", "never")
	logx.Infof("should not print")
	logx.Warnf("remote down")
	out := buf.String()
	if strings.Contains(out, "should not print") {
		t.Fatalf("info should be filtered when level=warn")
	}
	if !strings.Contains(out, "[WARN] remote down") {
		t.Fatalf("expect warn line, got: %q", out)
	}
}

func TestLogx_Silent(t *testing.T) {
	var buf bytes.Buffer
	logx.InitWriter(&buf, "off", "pretty", "en", "never")
	logx.Errorf("boom")
	if buf.Len() != 0 {
		t.Fatalf("expect no output, got: %q", buf.String())
	}
}

func TestLogx_JSONFormat(t *testing.T) {
	var buf bytes.Buffer
	logx.InitWriter(&buf, "info", "json", "en", "never")
	logx.Infof("ok")
	if !strings.Contains(buf.String(), `"msg":"ok"`) {
		t.Fatalf("expect json output, got: %q", buf.String())
	}
}
