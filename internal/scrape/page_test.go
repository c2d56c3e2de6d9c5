package scrape_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"go-quina-board/internal/fetch"
	"go-quina-board/internal/model"
	"go-quina-board/internal/rules"
	"go-quina-board/internal/scrape"
)

const resultsHTML = `<!doctype html><html><body>
<table class="results archive quina">
  <tr><th>Draw</th><th>Numbers</th></tr>
  <tr><td>Draw 6312<br>Monday 15th January 2024</td>
      <td><ul><li class="ball">71</li><li class="ball">05</li><li class="ball">33</li><li class="ball">12</li><li class="ball">48</li></ul></td></tr>
  <tr><td>Draw Number: 6311 13 January 2024</td>
      <td><ul><li class="ball">1</li><li class="ball">2</li><li class="ball">3</li><li class="ball">4</li></ul></td></tr>
</table>
<div class="draw-card">#6310 12 Jan 2024
  <span class="number">80</span><span class="number">9</span><span class="number">9</span>
  <span class="number">10</span><span class="number">11</span><span class="number">12</span>
</div>
<div class="result-box">Draw 6312 <span class="ball">1</span></div>
</body></html>`

func TestParseResultsHTML_RowsAndBlocks(t *testing.T) {
	now := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	got, err := scrape.ParseResultsHTML(strings.NewReader(resultsHTML), rules.DefaultResultsPage, now)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	want := []model.DrawRecord{
		{DrawNumber: 6312, Date: "2024-01-15", Numbers: []int{5, 12, 33, 48, 71}},
		{DrawNumber: 6310, Date: "2024-01-12", Numbers: []int{9, 10, 11, 12, 80}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("records mismatch (-want +got):\n%s", diff)
	}
}

func TestParseResultsPage_HTTP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(resultsHTML))
	}))
	defer srv.Close()

	cl, _ := fetch.New(fetch.Options{Timeout: 2 * time.Second})
	got, err := scrape.ParseResultsPage(context.Background(), cl, srv.URL, rules.DefaultResultsPage, time.Now())
	if err != nil {
		t.Fatalf("parse page: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("records=%d want=2", len(got))
	}
}

func TestDrawDate_FallbackToday(t *testing.T) {
	now := time.Date(2024, 5, 6, 10, 0, 0, 0, time.UTC)
	if got := scrape.DrawDate("no date here", now); got != "2024-05-06" {
		t.Fatalf("got=%q", got)
	}
	if got := scrape.DrawDate("3rd March 2023", now); got != "2023-03-03" {
		t.Fatalf("got=%q", got)
	}
}

func TestDrawNumber(t *testing.T) {
	if n, ok := scrape.DrawNumber("draw number: 6400", false); !ok || n != 6400 {
		t.Fatalf("got=%d,%v", n, ok)
	}
	if _, ok := scrape.DrawNumber("#6400", false); ok {
		t.Fatalf("strict mode should not accept bare number")
	}
	if n, ok := scrape.DrawNumber("#6400", true); !ok || n != 6400 {
		t.Fatalf("loose got=%d,%v", n, ok)
	}
}
