package artifact

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

// ModelStore persists the trained model under its fixed identifier, with
// the same atomic-replace discipline as the calendar store.
type ModelStore struct {
	dir string
}

// NewModelStore creates a model store rooted at dir.
func NewModelStore(dir string) *ModelStore {
	return &ModelStore{dir: dir}
}

func (s *ModelStore) path(id string) string {
	return filepath.Join(s.dir, id+".json")
}

// Save atomically replaces the persisted model.
func (s *ModelStore) Save(m *Model) error {
	if m.ID == "" {
		return fmt.Errorf("model ID must not be empty")
	}
	return writeJSONAtomic(s.path(m.ID), m)
}

// Load reads the persisted model by identifier. A missing model is an
// error; callers that can degrade should check with os.IsNotExist semantics
// via Exists first.
func (s *ModelStore) Load(id string) (*Model, error) {
	data, err := os.ReadFile(s.path(id))
	if err != nil {
		return nil, fmt.Errorf("read model %s: %w", id, err)
	}

	var m Model
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("decode model %s: %w", id, err)
	}

	return &m, nil
}

// Exists reports whether a model is persisted under id.
func (s *ModelStore) Exists(id string) bool {
	_, err := os.Stat(s.path(id))
	return err == nil
}

// PredictUpProbability lets a loaded model serve as a seasonal predictor
// over its finite inference domain. Unknown slots resolve to neutral.
func (m *Model) PredictUpProbability(day int) float64 {
	p, ok := m.UpProbabilityByDay[strconv.Itoa(day)]
	if !ok {
		return 0.5
	}
	return p
}
