package engine

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"statarb/internal/strategy"
)

// Record is one line of the append-only decision journal: what the
// z-score was, what the machine proposed, and what became of it.
type Record struct {
	RunID         string            `json:"run_id"`
	Timestamp     time.Time         `json:"timestamp"`
	CandleTime    int64             `json:"candle_time"`
	ZScore        float64           `json:"z_score"`
	HasZ          bool              `json:"has_z_score"`
	Position      strategy.Position `json:"position"`
	Action        strategy.Action   `json:"action"`
	Reason        string            `json:"reason"`
	Result        string            `json:"result"`
	RejectReason  string            `json:"reject_reason,omitempty"`
	Long1OrderID  string            `json:"long1_order_id,omitempty"`
	Short2OrderID string            `json:"short2_order_id,omitempty"`
}

type DecisionLogger struct {
	runID  string
	file   *os.File
	writer *bufio.Writer
	mu     sync.Mutex
}

func NewDecisionLogger(path string, runID string) (*DecisionLogger, error) {
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, err
	}
	return &DecisionLogger{
		runID:  runID,
		file:   file,
		writer: bufio.NewWriter(file),
	}, nil
}

func (d *DecisionLogger) RunID() string {
	return d.runID
}

func (d *DecisionLogger) Append(record Record) {
	d.mu.Lock()
	defer d.mu.Unlock()
	record.RunID = d.runID
	payload, err := json.Marshal(record)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to marshal decision record: %v\n", err)
		return
	}
	if _, err := d.writer.Write(append(payload, '\n')); err != nil {
		fmt.Fprintf(os.Stderr, "failed to write decision record: %v\n", err)
		return
	}
	if err := d.writer.Flush(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to flush decision journal: %v\n", err)
	}
}

func (d *DecisionLogger) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.writer.Flush(); err != nil {
		_ = d.file.Close()
		return err
	}
	return d.file.Close()
}
