package storage

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"petadopt/internal/model"
)

// JsonlStorage appends history records to a JSONL file.
type JsonlStorage struct {
	path string
	mu   sync.Mutex
}

func NewJsonlStorage(path string) *JsonlStorage {
	return &JsonlStorage{path: path}
}

// PutForwardBatch appends a batch of forwarding records as JSON lines.
func (s *JsonlStorage) PutForwardBatch(forwards []model.ForwardRecord) error {
	if len(forwards) == 0 {
		return nil
	}
	records := make([]interface{}, len(forwards))
	for i, forward := range forwards {
		records[i] = forward
	}
	return s.appendLines(records)
}

// PutAdoptionBatch appends a batch of adoption records as JSON lines.
func (s *JsonlStorage) PutAdoptionBatch(adoptions []model.AdoptionRecord) error {
	if len(adoptions) == 0 {
		return nil
	}
	records := make([]interface{}, len(adoptions))
	for i, adoptionRecord := range adoptions {
		records[i] = adoptionRecord
	}
	return s.appendLines(records)
}

func (s *JsonlStorage) appendLines(records []interface{}) error {
	dir := filepath.Dir(s.path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := os.OpenFile(s.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open output file: %w", err)
	}
	defer file.Close()

	writer := bufio.NewWriter(file)
	for _, record := range records {
		line, err := json.Marshal(record)
		if err != nil {
			return fmt.Errorf("marshal record: %w", err)
		}
		if _, err := writer.Write(line); err != nil {
			return fmt.Errorf("write record: %w", err)
		}
		if err := writer.WriteByte('\n'); err != nil {
			return fmt.Errorf("write newline: %w", err)
		}
	}

	if err := writer.Flush(); err != nil {
		return fmt.Errorf("flush output: %w", err)
	}

	return nil
}
