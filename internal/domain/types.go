// Package domain defines the core types for the ward duty roster engine.
package domain

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"
)

// DutyCode is a worker's assignment for one day.
type DutyCode string

const (
	// Unset marks a cell that is still to be decided. It is never a valid
	// result of a completed generation run.
	Unset DutyCode = ""

	DutyDay       DutyCode = "D"
	DutyEvening   DutyCode = "E"
	DutyNight     DutyCode = "N"
	DutyHeadNurse DutyCode = "DH"
	DutyOff       DutyCode = "O"

	LeaveFull    DutyCode = "V"
	LeaveQuarter DutyCode = "v.25"
	LeaveHalf    DutyCode = "v.0.5"
	DutyMakeup   DutyCode = "MD"
)

// IsUnset reports whether the cell is still to be decided.
func (c DutyCode) IsUnset() bool { return c == Unset }

// Base folds the head-nurse day code into the plain day code.
func (c DutyCode) Base() DutyCode {
	if c == DutyHeadNurse {
		return DutyDay
	}
	return c
}

// Category tags a worker. Only CategoryHeadNurse changes engine behaviour.
type Category string

const (
	CategoryGeneral   Category = "general"
	CategoryHeadNurse Category = "head_nurse"
)

// Worker is one named member of the roster. Names are unique and the
// roster order is significant.
type Worker struct {
	Name     string   `json:"name"`
	Category Category `json:"category"`
}

// Day is one calendar day of a roster month.
type Day struct {
	Index   int          `json:"index"`
	Date    time.Time    `json:"date"`
	Weekday time.Weekday `json:"weekday"`
	Weekend bool         `json:"weekend"`
	Label   string       `json:"label"`
}

// CellKey addresses one (worker, day) cell.
type CellKey struct {
	Worker string `json:"worker"`
	Day    int    `json:"day"`
}

// ManualEditSet holds the cells an operator set explicitly.
type ManualEditSet map[CellKey]struct{}

// NewManualEditSet builds a set from keys.
func NewManualEditSet(keys ...CellKey) ManualEditSet {
	s := make(ManualEditSet, len(keys))
	for _, k := range keys {
		s[k] = struct{}{}
	}
	return s
}

// Has reports whether the key is marked as manually edited.
func (s ManualEditSet) Has(worker string, day int) bool {
	_, ok := s[CellKey{Worker: worker, Day: day}]
	return ok
}

// Keys returns the keys ordered by worker then day.
func (s ManualEditSet) Keys() []CellKey {
	keys := make([]CellKey, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Worker != keys[j].Worker {
			return keys[i].Worker < keys[j].Worker
		}
		return keys[i].Day < keys[j].Day
	})
	return keys
}

// Clone returns an independent copy.
func (s ManualEditSet) Clone() ManualEditSet {
	out := make(ManualEditSet, len(s))
	for k := range s {
		out[k] = struct{}{}
	}
	return out
}

// Tail maps each worker to the last codes of a month, oldest first.
type Tail map[string][]DutyCode

// Grid is the worker × day assignment table for one month.
type Grid struct {
	Workers []string
	Days    []Day
	rows    map[string][]DutyCode
}

// NewGrid creates a grid with every cell unset.
func NewGrid(workers []string, days []Day) *Grid {
	g := &Grid{
		Workers: append([]string(nil), workers...),
		Days:    append([]Day(nil), days...),
		rows:    make(map[string][]DutyCode, len(workers)),
	}
	for _, w := range workers {
		g.rows[w] = make([]DutyCode, len(days))
	}
	return g
}

// Len returns the number of days in the grid.
func (g *Grid) Len() int { return len(g.Days) }

// Empty reports whether the grid has no cells at all.
func (g *Grid) Empty() bool { return g == nil || len(g.Workers) == 0 || len(g.Days) == 0 }

// HasWorker reports whether the worker has a row.
func (g *Grid) HasWorker(worker string) bool {
	_, ok := g.rows[worker]
	return ok
}

// Get returns the cell value, or Unset when out of range.
func (g *Grid) Get(worker string, day int) DutyCode {
	row, ok := g.rows[worker]
	if !ok || day < 0 || day >= len(row) {
		return Unset
	}
	return row[day]
}

// Set writes one cell.
func (g *Grid) Set(worker string, day int, code DutyCode) error {
	row, ok := g.rows[worker]
	if !ok {
		return NewEngineError(ErrUnknownWorker.Code, fmt.Sprintf("%s: %q", ErrUnknownWorker.Message, worker))
	}
	if day < 0 || day >= len(row) {
		return NewEngineError(ErrDayOutOfRange.Code, fmt.Sprintf("%s: %d", ErrDayOutOfRange.Message, day))
	}
	row[day] = code
	return nil
}

// Row returns a copy of the worker's row.
func (g *Grid) Row(worker string) []DutyCode {
	return append([]DutyCode(nil), g.rows[worker]...)
}

// Complete reports whether every cell is assigned.
func (g *Grid) Complete() bool {
	for _, w := range g.Workers {
		for _, c := range g.rows[w] {
			if c.IsUnset() {
				return false
			}
		}
	}
	return true
}

// Tail returns the last n codes of each row.
func (g *Grid) Tail(n int) Tail {
	t := make(Tail, len(g.Workers))
	for _, w := range g.Workers {
		row := g.rows[w]
		start := len(row) - n
		if start < 0 {
			start = 0
		}
		t[w] = append([]DutyCode(nil), row[start:]...)
	}
	return t
}

// Clone returns a deep copy.
func (g *Grid) Clone() *Grid {
	out := NewGrid(g.Workers, g.Days)
	for _, w := range g.Workers {
		copy(out.rows[w], g.rows[w])
	}
	return out
}

type gridJSON struct {
	Workers []string              `json:"workers"`
	Days    []Day                 `json:"days"`
	Rows    map[string][]DutyCode `json:"rows"`
}

// MarshalJSON implements json.Marshaler.
func (g *Grid) MarshalJSON() ([]byte, error) {
	return json.Marshal(gridJSON{Workers: g.Workers, Days: g.Days, Rows: g.rows})
}

// UnmarshalJSON implements json.Unmarshaler. Rows are padded or truncated
// to the number of days.
func (g *Grid) UnmarshalJSON(data []byte) error {
	var raw gridJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*g = *NewGrid(raw.Workers, raw.Days)
	for _, w := range raw.Workers {
		copy(g.rows[w], raw.Rows[w])
	}
	return nil
}

// RenameWorker moves a row to a new name, keeping its position.
func (g *Grid) RenameWorker(from, to string) error {
	row, ok := g.rows[from]
	if !ok {
		return NewEngineError(ErrUnknownWorker.Code, fmt.Sprintf("%s: %q", ErrUnknownWorker.Message, from))
	}
	if _, taken := g.rows[to]; taken {
		return NewEngineError(ErrDuplicateWorker.Code, fmt.Sprintf("%s: %q", ErrDuplicateWorker.Message, to))
	}
	delete(g.rows, from)
	g.rows[to] = row
	for i, w := range g.Workers {
		if w == from {
			g.Workers[i] = to
		}
	}
	return nil
}
