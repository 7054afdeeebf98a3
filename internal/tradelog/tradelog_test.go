package tradelog

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func readLines(t *testing.T, path string) []string {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open %s: %v", path, err)
	}
	defer f.Close()
	var lines []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	return lines
}

func TestAppendWritesJSONLine(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("TRADER_LOG_DIR", dir)

	err := Append(Entry{SecurityID: "RELIANCE", Side: "BUY", Qty: 25, Price: 1600, OrderID: "SIM-1", Confidence: 0.9})
	if err != nil {
		t.Fatalf("append failed: %v", err)
	}
	err = Append(Entry{SecurityID: "TCS", Side: "SELL", Qty: 10, Price: 3200, OrderID: "SIM-2", Confidence: 0.8})
	if err != nil {
		t.Fatalf("second append failed: %v", err)
	}

	day := time.Now().In(ist()).Format("2006-01-02")
	lines := readLines(t, filepath.Join(dir, day+".txt"))
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2", len(lines))
	}

	var e Entry
	if err := json.Unmarshal([]byte(lines[0]), &e); err != nil {
		t.Fatalf("line is not valid JSON: %v", err)
	}
	if e.SecurityID != "RELIANCE" || e.Qty != 25 || e.Time == "" {
		t.Errorf("unexpected entry: %+v", e)
	}
}

func TestDecisionAndStrategyStreamsAreSeparate(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("TRADER_LOG_DIR", dir)

	if err := AppendDecision(DecisionEntry{SecurityID: "INFY", Action: "HOLD", Confidence: 0.3}); err != nil {
		t.Fatal(err)
	}
	if err := AppendStrategy(StrategyEntry{SecurityID: "INFY", Name: "Iron Condor", Score: 14.5}); err != nil {
		t.Fatal(err)
	}

	day := time.Now().In(ist()).Format("2006-01-02")
	if _, err := os.Stat(filepath.Join(dir, "decisions", day+".txt")); err != nil {
		t.Errorf("decisions stream missing: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "strategies", day+".txt")); err != nil {
		t.Errorf("strategies stream missing: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, day+".txt")); !os.IsNotExist(err) {
		t.Error("trade stream should be untouched")
	}
}

func TestCompressOlderGzipsStaleFiles(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("TRADER_LOG_DIR", dir)

	stale := filepath.Join(dir, "2020-01-01.txt")
	if err := os.WriteFile(stale, []byte("{}\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	old := time.Now().AddDate(0, 0, -30)
	if err := os.Chtimes(stale, old, old); err != nil {
		t.Fatal(err)
	}

	fresh := filepath.Join(dir, "fresh.txt")
	if err := os.WriteFile(fresh, []byte("{}\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := CompressOlder(7); err != nil {
		t.Fatalf("compress failed: %v", err)
	}

	if _, err := os.Stat(stale + ".gz"); err != nil {
		t.Errorf("stale file not gzipped: %v", err)
	}
	if _, err := os.Stat(stale); !os.IsNotExist(err) {
		t.Error("stale original should be removed")
	}
	if _, err := os.Stat(fresh); err != nil {
		t.Errorf("fresh file should be left alone: %v", err)
	}
}

func TestCompressOlderDisabled(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("TRADER_LOG_DIR", dir)

	stale := filepath.Join(dir, "2020-01-01.txt")
	if err := os.WriteFile(stale, []byte("{}\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	old := time.Now().AddDate(0, 0, -30)
	if err := os.Chtimes(stale, old, old); err != nil {
		t.Fatal(err)
	}

	if err := CompressOlder(0); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(stale); err != nil {
		t.Error("retention 0 must not touch files")
	}
}
