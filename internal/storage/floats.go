package storage

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// jsonFloat encodes NaN and ±Inf as the strings "NaN", "+Inf" and "-Inf" so a
// diverged run still serialises. Finite values stay plain numbers.
type jsonFloat float64

func (f jsonFloat) MarshalJSON() ([]byte, error) {
	v := float64(f)
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return json.Marshal(strconv.FormatFloat(v, 'g', -1, 64))
	}
	return json.Marshal(v)
}

func (f *jsonFloat) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return fmt.Errorf("storage: float %q: %w", s, err)
		}
		*f = jsonFloat(v)
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*f = jsonFloat(v)
	return nil
}

// Metrics maps metric names to final values.
type Metrics map[string]float64

func (m Metrics) MarshalJSON() ([]byte, error) {
	if m == nil {
		return []byte("null"), nil
	}
	out := make(map[string]jsonFloat, len(m))
	for k, v := range m {
		out[k] = jsonFloat(v)
	}
	return json.Marshal(out)
}

func (m *Metrics) UnmarshalJSON(data []byte) error {
	var in map[string]jsonFloat
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	if in == nil {
		*m = nil
		return nil
	}
	*m = make(Metrics, len(in))
	for k, v := range in {
		(*m)[k] = float64(v)
	}
	return nil
}

// Floats is a series of values.
type Floats []float64

func (fs Floats) MarshalJSON() ([]byte, error) {
	if fs == nil {
		return []byte("null"), nil
	}
	out := make([]jsonFloat, len(fs))
	for i, v := range fs {
		out[i] = jsonFloat(v)
	}
	return json.Marshal(out)
}

func (fs *Floats) UnmarshalJSON(data []byte) error {
	var in []jsonFloat
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	if in == nil {
		*fs = nil
		return nil
	}
	*fs = make(Floats, len(in))
	for i, v := range in {
		(*fs)[i] = float64(v)
	}
	return nil
}

// Position is an exported particle position.
type Position struct {
	X float64
	Y float64
}

type jsonPosition struct {
	X jsonFloat `json:"x"`
	Y jsonFloat `json:"y"`
}

func (p Position) MarshalJSON() ([]byte, error) {
	return json.Marshal(jsonPosition{X: jsonFloat(p.X), Y: jsonFloat(p.Y)})
}

func (p *Position) UnmarshalJSON(data []byte) error {
	var in jsonPosition
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	p.X, p.Y = float64(in.X), float64(in.Y)
	return nil
}
