package sheet_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"go-quina-board/internal/model"
	"go-quina-board/internal/sheet"
)

func TestParseRow_QuotedComma(t *testing.T) {
	got := sheet.ParseRow(`6310, "12/01/2024" ,"1,5",2`)
	want := []string{"6310", "12/01/2024", "1,5", "2"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("fields mismatch (-want +got):\n%s", diff)
	}
}

func TestParseRow_UnterminatedQuote(t *testing.T) {
	got := sheet.ParseRow(`a,"b,c`)
	want := []string{"a", "b,c"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("fields mismatch (-want +got):\n%s", diff)
	}
	if n := len(sheet.ParseRow("")); n != 1 {
		t.Fatalf("empty line fields=%d want=1", n)
	}
}

func TestExtractRecords_SlashDate(t *testing.T) {
	csv := "Concurso,Data,B1,B2,B3,B4,B5\n1234,01/02/2023,10,20,30,40,50\n"
	got := sheet.ExtractRecords(csv)
	want := []model.DrawRecord{{DrawNumber: 1234, Date: "2023-02-01", Numbers: []int{10, 20, 30, 40, 50}}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("records mismatch (-want +got):\n%s", diff)
	}
}

func TestExtractRecords_NWellFormedLines(t *testing.T) {
	csv := "h1,h2,h3,h4,h5,h6,h7\r\n" +
		"1,2024-01-01,1,2,3,4,5\r\n" +
		"\r\n" +
		"2,2024-01-02,6,7,8,9,10\r\n" +
		"3,1/3/2024,11,12,13,14,15,extra,,\r\n"
	got := sheet.ExtractRecords(csv)
	if len(got) != 3 {
		t.Fatalf("records=%d want=3", len(got))
	}
	for i, r := range got {
		if len(r.Numbers) != 5 {
			t.Fatalf("record %d numbers=%d want=5", i, len(r.Numbers))
		}
		if int(r.DrawNumber) != i+1 {
			t.Fatalf("order broken at %d: %d", i, r.DrawNumber)
		}
	}
	if got[1].Date != "2024-01-02" || got[2].Date != "2024-03-01" {
		t.Fatalf("dates: %q %q", got[1].Date, got[2].Date)
	}
}

func TestExtractRecords_Dropped(t *testing.T) {
	csv := "header\n" +
		"10,01/01/2024,1,2,x,4,5\n" + // 只有 4 个数字
		"11,01/01/2024,1,2,3,4\n" + // 字段不足
		"abc,01/01/2024,1,2,3,4,5\n" + // 期号无数字
		"#12,01/01/2024, 7 ,8kg,9,10,11\n" // 宽松解析仍可接受
	got := sheet.ExtractRecords(csv)
	if len(got) != 1 {
		t.Fatalf("records=%d want=1: %#v", len(got), got)
	}
	want := model.DrawRecord{DrawNumber: 12, Date: "2024-01-01", Numbers: []int{7, 8, 9, 10, 11}}
	if diff := cmp.Diff(want, got[0]); diff != "" {
		t.Fatalf("record mismatch (-want +got):\n%s", diff)
	}
}

func TestLenientAtoi(t *testing.T) {
	cases := []struct {
		in   string
		want int
		ok   bool
	}{
		{"42", 42, true},
		{"  7", 7, true},
		{"-3", -3, true},
		{"12abc", 12, true},
		{"", 0, false},
		{"abc", 0, false},
		{"-", 0, false},
	}
	for _, c := range cases {
		got, ok := sheet.LenientAtoi(c.in)
		if ok != c.ok || got != c.want {
			t.Fatalf("LenientAtoi(%q)=%d,%v want=%d,%v", c.in, got, ok, c.want, c.ok)
		}
	}
}

func TestNormalizeDate(t *testing.T) {
	if got := sheet.NormalizeDate("5/7/2024"); got != "2024-07-05" {
		t.Fatalf("got=%q", got)
	}
	if got := sheet.NormalizeDate("2024-07-05"); got != "2024-07-05" {
		t.Fatalf("passthrough got=%q", got)
	}
	if got := sheet.NormalizeDate("5/7"); got != "5/7" {
		t.Fatalf("short got=%q", got)
	}
}
