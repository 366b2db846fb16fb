package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/san-kum/nbodysim/internal/dynamo"
)

// Store keeps run records as one directory per run holding metadata.json
// and bodies.csv with the final body state.
type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID        string             `json:"id"`
	Scene     string             `json:"scene"`
	Timestamp time.Time          `json:"timestamp"`
	Seed      uint64             `json:"seed"`
	Bodies    int                `json:"bodies"`
	Dt        float64            `json:"dt"`
	Ticks     uint64             `json:"ticks"`
	SimTime   float64            `json:"sim_time"`
	Strategy  string             `json:"strategy"`
	Force     string             `json:"force"`
	Metrics   map[string]float64 `json:"metrics"`
}

var bodiesHeader = []string{"index", "mass", "px", "py", "pz", "vx", "vy", "vz"}

// Save writes meta and the store's current state. An empty meta.ID is
// filled from the scene name and the current time.
func (s *Store) Save(meta RunMetadata, st *dynamo.Store) (string, error) {
	if meta.Timestamp.IsZero() {
		meta.Timestamp = time.Now()
	}
	if meta.ID == "" {
		meta.ID = fmt.Sprintf("%s_%d", meta.Scene, meta.Timestamp.UnixNano())
	}
	runDir := filepath.Join(s.baseDir, meta.ID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	metaFile, err := os.Create(filepath.Join(runDir, "metadata.json"))
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	csvFile, err := os.Create(filepath.Join(runDir, "bodies.csv"))
	if err != nil {
		return "", err
	}
	defer csvFile.Close()

	w := csv.NewWriter(csvFile)
	if err := w.Write(bodiesHeader); err != nil {
		return "", err
	}

	pos, vel, mass := st.Positions(), st.Velocities(), st.Masses()
	for i := range mass {
		row := []string{strconv.Itoa(i), formatFloat(mass[i])}
		for _, c := range pos[i] {
			row = append(row, formatFloat(c))
		}
		for _, c := range vel[i] {
			row = append(row, formatFloat(c))
		}
		if err := w.Write(row); err != nil {
			return "", err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return "", err
	}
	return meta.ID, nil
}

func formatFloat(f float32) string {
	return strconv.FormatFloat(float64(f), 'g', -1, 32)
}

// List returns every readable run, newest first.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	slices.SortFunc(runs, func(a, b RunMetadata) int {
		return b.Timestamp.Compare(a.Timestamp)
	})
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, "metadata.json"))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

// LoadBodies rebuilds a store from a run's bodies.csv.
func (s *Store) LoadBodies(runID string) (*dynamo.Store, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, "bodies.csv"))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = len(bodiesHeader)

	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 1 {
		return nil, fmt.Errorf("%s: missing header", runID)
	}

	st := dynamo.NewStore(len(records) - 1)
	for _, rec := range records[1:] {
		idx, err := strconv.Atoi(rec[0])
		if err != nil {
			return nil, fmt.Errorf("%s: bad index %q: %w", runID, rec[0], err)
		}

		vals := make([]float32, len(rec)-1)
		for j, field := range rec[1:] {
			f, err := strconv.ParseFloat(field, 32)
			if err != nil {
				return nil, fmt.Errorf("%s: body %d: %w", runID, idx, err)
			}
			vals[j] = float32(f)
		}

		if err := st.SetMass(idx, vals[0]); err != nil {
			return nil, err
		}
		if err := st.SetPosition(idx, mgl32.Vec3{vals[1], vals[2], vals[3]}); err != nil {
			return nil, err
		}
		if err := st.SetVelocity(idx, mgl32.Vec3{vals[4], vals[5], vals[6]}); err != nil {
			return nil, err
		}
	}
	return st, nil
}
