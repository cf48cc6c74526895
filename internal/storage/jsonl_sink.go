package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"filmography-crawler/pkg/models"
)

// JSONLSink appends one JSON object per credit to a file.
type JSONLSink struct {
	mu   sync.Mutex
	file *os.File
	enc  *json.Encoder
}

func NewJSONLSink(path string) (*JSONLSink, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open output %s: %w", path, err)
	}
	return &JSONLSink{file: f, enc: json.NewEncoder(f)}, nil
}

func (s *JSONLSink) Save(_ context.Context, batch []models.StoredCredit) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range batch {
		if err := s.enc.Encode(c.CreditRecord); err != nil {
			return err
		}
	}
	return s.file.Sync()
}

func (s *JSONLSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.file.Close()
}
