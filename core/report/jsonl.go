package report

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"os"
	"sync"

	"github.com/kilianp07/depot/core/model"
)

// JSONLStore stores one summary per line in a JSONL file.
type JSONLStore struct {
	path string
	mu   sync.Mutex
}

func NewJSONLStore(path string) (*JSONLStore, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return nil, err
	}
	if cerr := f.Close(); cerr != nil {
		return nil, cerr
	}
	return &JSONLStore{path: path}, nil
}

func (s *JSONLStore) Append(ctx context.Context, sum model.DaySummary) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()
	return json.NewEncoder(f).Encode(sum)
}

func (s *JSONLStore) Query(ctx context.Context, q Query) ([]model.DaySummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, err := os.Open(s.path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	return scanSummaries(f, q)
}

func (s *JSONLStore) Close() error { return nil }

// scanSummaries decodes JSONL summaries, skipping malformed lines.
func scanSummaries(r io.Reader, q Query) ([]model.DaySummary, error) {
	var res []model.DaySummary
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		var sum model.DaySummary
		if err := json.Unmarshal(scanner.Bytes(), &sum); err != nil {
			continue
		}
		if q.Match(sum) {
			res = append(res, sum)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return res, nil
}
