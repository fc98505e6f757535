package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/san-kum/clothsim/internal/cloth"
	"github.com/san-kum/clothsim/internal/config"
	"github.com/san-kum/clothsim/internal/sim"
)

const (
	metadataFile  = "metadata.json"
	seriesFile    = "series.csv"
	positionsFile = "positions.csv"
	edgesFile     = "edges.csv"
)

// ErrRunNotFound is returned when a run directory has no metadata.
var ErrRunNotFound = errors.New("storage: run not found")

// Store keeps each run in its own directory under baseDir.
type Store struct {
	baseDir string
	logger  *log.Logger
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir, logger: log.New(io.Discard)}
}

func (s *Store) SetLogger(l *log.Logger) {
	if l != nil {
		s.logger = l
	}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID        string             `json:"id"`
	Preset    string             `json:"preset"`
	Timestamp time.Time          `json:"timestamp"`
	Ticks     int                `json:"ticks"`
	Particles int                `json:"particles"`
	Springs   int                `json:"springs"`
	Config    *config.Config     `json:"config"`
	Metrics   Metrics            `json:"metrics"`
	Errors    []string           `json:"errors,omitempty"`
}

// Series is a stored metric time series, one column per metric.
type Series struct {
	Times  []float64
	Names  []string
	Values map[string][]float64
}

// Save writes metadata, metric series and the final lattice of result and
// returns the new run id.
func (s *Store) Save(preset string, cfg *config.Config, result *sim.Result) (string, error) {
	now := time.Now()
	runID := fmt.Sprintf("%s_%d", preset, now.UnixNano())
	runDir := filepath.Join(s.baseDir, runID)

	if err := s.Init(); err != nil {
		return "", err
	}
	// Files go to a hidden staging directory first; a failed save never
	// leaves a half-written run behind.
	tmpDir, err := os.MkdirTemp(s.baseDir, "."+runID+"-")
	if err != nil {
		return "", err
	}
	defer os.RemoveAll(tmpDir)
	if err := os.Chmod(tmpDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:        runID,
		Preset:    preset,
		Timestamp: now,
		Ticks:     result.TicksTaken,
		Config:    cfg,
		Metrics:   result.Metrics,
	}
	if result.Final != nil {
		meta.Particles = len(result.Final.Positions)
		meta.Springs = len(result.Final.Edges)
	}
	for _, err := range result.Errors {
		meta.Errors = append(meta.Errors, err.Error())
	}

	if err := writeJSON(filepath.Join(tmpDir, metadataFile), meta); err != nil {
		return "", fmt.Errorf("storage: save %s: %w", runID, err)
	}
	if err := writeSeries(filepath.Join(tmpDir, seriesFile), result); err != nil {
		return "", fmt.Errorf("storage: save %s: %w", runID, err)
	}
	if result.Final != nil {
		if err := writePositions(filepath.Join(tmpDir, positionsFile), result.Final); err != nil {
			return "", fmt.Errorf("storage: save %s: %w", runID, err)
		}
		if err := writeEdges(filepath.Join(tmpDir, edgesFile), result.Final); err != nil {
			return "", fmt.Errorf("storage: save %s: %w", runID, err)
		}
	}
	if err := os.Rename(tmpDir, runDir); err != nil {
		return "", err
	}

	s.logger.Info("run saved", "id", runID, "dir", runDir, "samples", len(result.Times))
	return runID, nil
}

// List returns every readable run, oldest first. Directories without valid
// metadata are skipped.
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
			s.logger.Debug("skipping run directory", "name", entry.Name(), "err", err)
			continue
		}
		runs = append(runs, *meta)
	}

	slices.SortFunc(runs, func(a, b RunMetadata) int {
		return a.Timestamp.Compare(b.Timestamp)
	})
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("storage: metadata for %s: %w", runID, err)
	}

	return &meta, nil
}

// Latest returns the most recent run id.
func (s *Store) Latest() (string, error) {
	runs, err := s.List()
	if err != nil {
		return "", err
	}
	if len(runs) == 0 {
		return "", ErrRunNotFound
	}
	return runs[len(runs)-1].ID, nil
}

func (s *Store) LoadSeries(runID string) (*Series, error) {
	records, err := readCSV(filepath.Join(s.baseDir, runID, seriesFile))
	if err != nil {
		return nil, err
	}

	series := &Series{Values: make(map[string][]float64)}
	if len(records) == 0 {
		return series, nil
	}

	series.Names = slices.Clone(records[0][1:])
	for _, record := range records[1:] {
		if len(record) != len(records[0]) {
			continue
		}
		t, err := strconv.ParseFloat(record[0], 64)
		if err != nil {
			continue
		}
		series.Times = append(series.Times, t)
		for j, name := range series.Names {
			val, err := strconv.ParseFloat(record[j+1], 64)
			if err != nil {
				return nil, fmt.Errorf("storage: %s row %d: %w", name, len(series.Times), err)
			}
			series.Values[name] = append(series.Values[name], val)
		}
	}

	return series, nil
}

// LoadFrame rebuilds the final lattice state of a run.
func (s *Store) LoadFrame(runID string) (*sim.Frame, error) {
	meta, err := s.Load(runID)
	if err != nil {
		return nil, err
	}

	positions, err := readCSV(filepath.Join(s.baseDir, runID, positionsFile))
	if err != nil {
		return nil, err
	}
	edges, err := readCSV(filepath.Join(s.baseDir, runID, edgesFile))
	if err != nil {
		return nil, err
	}

	f := &sim.Frame{Tick: meta.Ticks}
	if meta.Config != nil {
		f.Params = meta.Config.Params()
		f.Time = float64(meta.Ticks) * f.Params.Dt
	}

	for i, record := range skipHeader(positions) {
		if len(record) < 4 {
			return nil, fmt.Errorf("storage: positions row %d: want 4 fields, got %d", i+1, len(record))
		}
		x, errX := strconv.ParseFloat(record[1], 64)
		y, errY := strconv.ParseFloat(record[2], 64)
		pinned, errP := strconv.ParseBool(record[3])
		if err := errors.Join(errX, errY, errP); err != nil {
			return nil, fmt.Errorf("storage: positions row %d: %w", i+1, err)
		}
		f.Positions = append(f.Positions, cloth.V(x, y))
		f.Pinned = append(f.Pinned, pinned)
	}

	for i, record := range skipHeader(edges) {
		if len(record) < 2 {
			return nil, fmt.Errorf("storage: edges row %d: want 2 fields, got %d", i+1, len(record))
		}
		a, errA := strconv.Atoi(record[0])
		b, errB := strconv.Atoi(record[1])
		if err := errors.Join(errA, errB); err != nil {
			return nil, fmt.Errorf("storage: edges row %d: %w", i+1, err)
		}
		if a < 0 || b < 0 || a >= len(f.Positions) || b >= len(f.Positions) {
			return nil, fmt.Errorf("storage: edges row %d: endpoint out of range", i+1)
		}
		f.Edges = append(f.Edges, cloth.Spring{A: a, B: b})
	}

	return f, nil
}

func skipHeader(records [][]string) [][]string {
	if len(records) == 0 {
		return nil
	}
	return records[1:]
}

func readCSV(path string) ([][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1
	return r.ReadAll()
}

func writeJSON(path string, v any) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeCSV(path string, header []string, rows func(w *csv.Writer) error) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	w := csv.NewWriter(file)
	if err := w.Write(header); err != nil {
		return err
	}
	if err := rows(w); err != nil {
		return err
	}
	w.Flush()
	return w.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func writeSeries(path string, result *sim.Result) error {
	header := append([]string{"time"}, result.MetricNames...)
	return writeCSV(path, header, func(w *csv.Writer) error {
		for i, t := range result.Times {
			row := []string{formatFloat(t)}
			for _, name := range result.MetricNames {
				vals := result.Series[name]
				if i < len(vals) {
					row = append(row, formatFloat(vals[i]))
				} else {
					row = append(row, "0")
				}
			}
			if err := w.Write(row); err != nil {
				return err
			}
		}
		return nil
	})
}

func writePositions(path string, f *sim.Frame) error {
	return writeCSV(path, []string{"id", "x", "y", "pinned"}, func(w *csv.Writer) error {
		for i, p := range f.Positions {
			pinned := i < len(f.Pinned) && f.Pinned[i]
			row := []string{strconv.Itoa(i), formatFloat(p.X), formatFloat(p.Y), strconv.FormatBool(pinned)}
			if err := w.Write(row); err != nil {
				return err
			}
		}
		return nil
	})
}

func writeEdges(path string, f *sim.Frame) error {
	return writeCSV(path, []string{"a", "b"}, func(w *csv.Writer) error {
		for _, sp := range f.Edges {
			if err := w.Write([]string{strconv.Itoa(sp.A), strconv.Itoa(sp.B)}); err != nil {
				return err
			}
		}
		return nil
	})
}
