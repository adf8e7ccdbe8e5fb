// Package history persists the log of past generated meal plans. It
// drives both the once-per-day send gate and the avoid-repetition block
// of the prompt.
package history

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
)

// dateLayout is day-granularity ISO, the format the state file has
// always used.
const dateLayout = "2006-01-02"

// Record is one day's generated output, reduced to short meal labels.
// Records are never mutated after creation; pruning drops them whole.
type Record struct {
	Date  string   `json:"date"`
	Meals []string `json:"meals"`
}

// State is the full persisted document. Loaded into memory at run
// start, written back only after a fully successful run.
type State struct {
	Recipes  []Record `json:"recipes"`
	LastSent string   `json:"last_sent"`
}

// DateKey formats t at day granularity.
func DateKey(t time.Time) string { return t.Format(dateLayout) }

// Store reads and writes the state file.
type Store struct {
	path string
	log  zerolog.Logger
}

func NewStore(path string, log zerolog.Logger) *Store {
	return &Store{path: path, log: log}
}

// Load reads the state file. Absence is not an error; a corrupt file is
// logged and treated as empty. Either way the run proceeds.
func (s *Store) Load() State {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.log.Warn().Err(err).Str("path", s.path).Msg("history unreadable, starting empty")
		}
		return State{}
	}
	if len(data) == 0 {
		return State{}
	}

	var st State
	if err := json.Unmarshal(data, &st); err != nil {
		s.log.Warn().Err(err).Str("path", s.path).Msg("history corrupt, starting empty")
		return State{}
	}
	return st
}

// Save writes the state file atomically (temp file + rename). Unlike
// Load this fails loudly: an unwritable history means the next run
// cannot know today was already sent.
func (s *Store) Save(st State) error {
	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal history: %w", err)
	}

	if dir := filepath.Dir(s.path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create history dir: %w", err)
		}
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write history: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace history: %w", err)
	}
	return nil
}

// Prune drops every record strictly older than now minus the retention
// window, preserving relative order. Pure; pruning twice equals pruning
// once. Records with unparseable dates are dropped too, they can never
// age out otherwise.
func Prune(st State, retentionDays int, now time.Time) State {
	if len(st.Recipes) == 0 {
		return st
	}

	cutoff := DateKey(now.AddDate(0, 0, -retentionDays))
	kept := make([]Record, 0, len(st.Recipes))
	for _, r := range st.Recipes {
		if _, err := time.Parse(dateLayout, r.Date); err != nil {
			continue
		}
		if r.Date < cutoff {
			continue
		}
		kept = append(kept, r)
	}
	return State{Recipes: kept, LastSent: st.LastSent}
}

// Append adds rec and marks its date as the last sent day. A second
// record for the same date is a logic error upstream: the state is
// returned unchanged along with the error.
func Append(st State, rec Record) (State, error) {
	for _, r := range st.Recipes {
		if r.Date == rec.Date {
			return st, fmt.Errorf("history already has a record for %s", rec.Date)
		}
	}

	out := State{
		Recipes:  append(append([]Record(nil), st.Recipes...), rec),
		LastSent: rec.Date,
	}
	return out, nil
}

// Recent returns up to n of the newest records, oldest first.
func Recent(st State, n int) []Record {
	if n <= 0 || len(st.Recipes) == 0 {
		return nil
	}
	if n > len(st.Recipes) {
		n = len(st.Recipes)
	}
	return st.Recipes[len(st.Recipes)-n:]
}
