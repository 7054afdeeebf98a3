package eod

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestSummarizeDay(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("TRADER_LOG_DIR", dir)

	day := time.Date(2025, 1, 6, 12, 0, 0, 0, time.FixedZone("IST", 19800))
	lines := `{"Time":"2025-01-06 10:00:00","SecurityID":"RELIANCE","Side":"BUY","Qty":10,"Price":1600,"OrderID":"SIM-1","Confidence":0.9}
{"Time":"2025-01-06 11:00:00","SecurityID":"RELIANCE","Side":"SELL","Qty":10,"Price":1650,"OrderID":"SIM-2","Confidence":0.8}
{"Time":"2025-01-06 11:30:00","SecurityID":"TCS","Side":"BUY","Qty":5,"Price":3200,"OrderID":"SIM-3","Confidence":0.7}
not json, should be skipped
`
	if err := os.WriteFile(filepath.Join(dir, "2025-01-06.txt"), []byte(lines), 0o644); err != nil {
		t.Fatal(err)
	}

	outPath, err := SummarizeDay(day)
	if err != nil {
		t.Fatalf("summarize failed: %v", err)
	}
	if outPath == "" {
		t.Fatal("expected a CSV path")
	}

	f, err := os.Open(outPath)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatal(err)
	}

	// Header, two instruments, TOTAL row.
	if len(rows) != 4 {
		t.Fatalf("got %d rows, want 4", len(rows))
	}
	if rows[1][0] != "RELIANCE" || rows[2][0] != "TCS" {
		t.Errorf("instruments not sorted: %s, %s", rows[1][0], rows[2][0])
	}
	// 10 matched shares at (1650 - 1600).
	if rows[1][7] != "500.00" {
		t.Errorf("RELIANCE realized pnl = %s, want 500.00", rows[1][7])
	}
	if rows[1][1] != "2" {
		t.Errorf("RELIANCE trade count = %s, want 2", rows[1][1])
	}
	if rows[3][0] != "TOTAL" {
		t.Errorf("last row = %s, want TOTAL", rows[3][0])
	}
}

func TestSummarizeDayNoTrades(t *testing.T) {
	t.Setenv("TRADER_LOG_DIR", t.TempDir())
	outPath, err := SummarizeDay(time.Now())
	if err != nil {
		t.Fatalf("summarize failed: %v", err)
	}
	if outPath != "" {
		t.Errorf("path = %s, want empty for missing trade file", outPath)
	}
}
