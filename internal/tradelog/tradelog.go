package tradelog

import (
	"compress/gzip"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"
)

var mu sync.Mutex

type Entry struct {
	Time, SecurityID, Side, OrderID, Reason string
	Qty                                     int
	Price                                   float64
	Confidence                              float64
	Extra                                   map[string]any `json:"extra,omitempty"`
}

type DecisionEntry struct {
	Time, SecurityID, Action, Reason string
	Confidence                       float64
	Price                            float64
	Features                         map[string]float64
	Extra                            map[string]any `json:"extra,omitempty"`
}

// StrategyEntry records the top-ranked option structure for a tick.
type StrategyEntry struct {
	Time, SecurityID, Name, RiskProfile string
	Score                               float64
	Confidence                          float64
	TopTwoGap                           float64
	Rationale                           string
}

func logDir() string {
	if v := os.Getenv("TRADER_LOG_DIR"); v != "" {
		return v
	}
	return "logs"
}

func ist() *time.Location { return time.FixedZone("IST", 19800) }

func dailyFilepath(t time.Time) string {
	d := t.In(ist()).Format("2006-01-02")
	return filepath.Join(logDir(), d+".txt")
}

func decisionsFilepath(t time.Time) string {
	d := t.In(ist()).Format("2006-01-02")
	return filepath.Join(logDir(), "decisions", d+".txt")
}

func strategiesFilepath(t time.Time) string {
	d := t.In(ist()).Format("2006-01-02")
	return filepath.Join(logDir(), "strategies", d+".txt")
}

func appendLine(path string, v any) error {
	mu.Lock()
	defer mu.Unlock()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()
	b, _ := json.Marshal(v)
	_, err = fmt.Fprintln(f, string(b))
	return err
}

func Append(e Entry) error {
	now := time.Now().In(ist())
	e.Time = now.Format("2006-01-02 15:04:05")
	return appendLine(dailyFilepath(now), e)
}

func AppendDecision(e DecisionEntry) error {
	now := time.Now().In(ist())
	e.Time = now.Format("2006-01-02 15:04:05")
	return appendLine(decisionsFilepath(now), e)
}

func AppendStrategy(e StrategyEntry) error {
	now := time.Now().In(ist())
	e.Time = now.Format("2006-01-02 15:04:05")
	return appendLine(strategiesFilepath(now), e)
}

// CompressOlder gzips log files older than retentionDays and removes the
// originals. A retention of 0 or less disables compression.
func CompressOlder(retentionDays int) error {
	if retentionDays <= 0 {
		return nil
	}
	root := logDir()
	return filepath.WalkDir(root, func(p string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() || filepath.Ext(p) != ".txt" {
			return nil
		}
		info, er := os.Stat(p)
		if er != nil {
			return nil
		}
		cutoff := time.Now().AddDate(0, 0, -retentionDays)
		if !info.ModTime().Before(cutoff) {
			return nil
		}

		gz := p + ".gz"
		if _, e2 := os.Stat(gz); e2 == nil {
			_ = os.Remove(p)
			return nil
		}

		in, e3 := os.Open(p)
		if e3 != nil {
			return nil
		}
		defer in.Close()

		out, e4 := os.OpenFile(gz, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
		if e4 != nil {
			return nil
		}
		gw := gzip.NewWriter(out)
		if _, e5 := io.Copy(gw, in); e5 != nil {
			gw.Close()
			out.Close()
			_ = os.Remove(gz)
			return nil
		}
		if e6 := gw.Close(); e6 != nil {
			out.Close()
			_ = os.Remove(gz)
			return nil
		}
		out.Close()
		_ = os.Remove(p)
		return nil
	})
}
