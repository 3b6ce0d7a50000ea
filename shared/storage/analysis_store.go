package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/TradersPost/pinescript-agents/internal/models"
)

// ErrNotFound is returned by Load when no analysis was saved under an ID.
var ErrNotFound = errors.New("analysis not found")

// AnalysisStore persists analysis results as one JSON file per analysis ID
type AnalysisStore struct {
	dir string
	mu  sync.Mutex
}

func NewAnalysisStore(dir string) *AnalysisStore {
	return &AnalysisStore{dir: dir}
}

// Path returns the file an analysis with the given ID is written to
func (s *AnalysisStore) Path(analysisID string) string {
	return filepath.Join(s.dir, fmt.Sprintf("video_analysis_%s.json", analysisID))
}

// Save writes result to <dir>/video_analysis_<id>.json and returns the path.
// An existing file for the same ID is replaced.
func (s *AnalysisStore) Save(result *models.AnalysisResult) (string, error) {
	if result.AnalysisID == "" {
		return "", errors.New("analysis result has no analysis ID")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	path := s.Path(result.AnalysisID)
	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	encoder.SetEscapeHTML(false)
	if err := encoder.Encode(result); err != nil {
		return "", fmt.Errorf("failed to encode analysis: %w", err)
	}
	return path, file.Close()
}

// Load reads a previously saved analysis
func (s *AnalysisStore) Load(analysisID string) (*models.AnalysisResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := os.Open(s.Path(analysisID))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, analysisID)
		}
		return nil, fmt.Errorf("failed to open analysis file: %w", err)
	}
	defer file.Close()

	var result models.AnalysisResult
	if err := json.NewDecoder(file).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode analysis: %w", err)
	}
	return &result, nil
}
