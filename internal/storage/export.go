package storage

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"

	"github.com/san-kum/clothsim/internal/cloth"
)

type ExportData struct {
	Run       *RunMetadata      `json:"run"`
	Times     Floats            `json:"times"`
	Series    map[string]Floats `json:"series"`
	Positions []Position        `json:"positions"`
	Pinned    []bool            `json:"pinned"`
	Edges     []cloth.Spring    `json:"edges"`
}

// ExportJSON writes a run's metadata, series and final lattice as one JSON
// document.
func (s *Store) ExportJSON(runID string, w io.Writer) error {
	meta, err := s.Load(runID)
	if err != nil {
		return err
	}
	series, err := s.LoadSeries(runID)
	if err != nil {
		return err
	}
	frame, err := s.LoadFrame(runID)
	if err != nil {
		return err
	}

	data := ExportData{
		Run:       meta,
		Times:     series.Times,
		Series:    make(map[string]Floats, len(series.Values)),
		Positions: make([]Position, len(frame.Positions)),
		Pinned:    frame.Pinned,
		Edges:     frame.Edges,
	}
	for name, values := range series.Values {
		data.Series[name] = values
	}
	for i, p := range frame.Positions {
		data.Positions[i] = Position{X: p.X, Y: p.Y}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

// ExportCSV copies the run's metric series to w unchanged.
func (s *Store) ExportCSV(runID string, w io.Writer) error {
	if _, err := s.Load(runID); err != nil {
		return err
	}
	file, err := os.Open(filepath.Join(s.baseDir, runID, seriesFile))
	if err != nil {
		return err
	}
	defer file.Close()

	_, err = io.Copy(w, file)
	return err
}
