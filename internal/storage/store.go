package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/san-kum/stepbridge/internal/bridge"
)

var ErrNoSession = errors.New("no such session")

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type SessionMetadata struct {
	ID         string             `json:"id"`
	Addr       string             `json:"addr"`
	Preset     string             `json:"preset,omitempty"`
	Started    time.Time          `json:"started"`
	Ended      time.Time          `json:"ended"`
	Dt         float64            `json:"dt"`
	Integrator string             `json:"integrator"`
	Steps      int                `json:"steps"`
	Episodes   int                `json:"episodes"`
	Dropped    int                `json:"dropped"`
	Metrics    map[string]float64 `json:"metrics"`
}

const stepsFile = "steps.csv"

var commandColumns = []string{"a0", "a1", "a2", "a3", "a4"}

// Save writes meta and records under a new session directory and returns
// the session id.
func (s *Store) Save(meta SessionMetadata, records []Record) (string, error) {
	if meta.Started.IsZero() {
		meta.Started = time.Now()
	}
	id := fmt.Sprintf("session_%d", meta.Started.UnixNano())
	dir := filepath.Join(s.baseDir, id)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}
	meta.ID = id

	metaFile, err := os.Create(filepath.Join(dir, "metadata.json"))
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	csvFile, err := os.Create(filepath.Join(dir, stepsFile))
	if err != nil {
		return "", err
	}
	defer csvFile.Close()

	if err := writeRecords(csvFile, records); err != nil {
		return "", fmt.Errorf("write %s: %w", stepsFile, err)
	}
	return id, nil
}

func writeRecords(out io.Writer, records []Record) error {
	w := csv.NewWriter(out)

	header := []string{"index", "episode", "time", "mode"}
	header = append(header, commandColumns...)
	header = append(header, bridge.StateFieldNames[:]...)
	if err := w.Write(header); err != nil {
		return err
	}

	for _, r := range records {
		row := []string{
			strconv.Itoa(r.Index),
			strconv.Itoa(r.Episode),
			formatFloat(r.Time),
			r.Mode,
		}
		for i := range commandColumns {
			if i < len(r.Command) {
				row = append(row, formatFloat(r.Command[i]))
			} else {
				row = append(row, "")
			}
		}
		for _, v := range r.State {
			row = append(row, formatFloat(v))
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

// List returns every readable session, oldest first.
func (s *Store) List() ([]SessionMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []SessionMetadata{}, nil
		}
		return nil, err
	}

	sessions := make([]SessionMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		sessions = append(sessions, *meta)
	}

	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].Started.Before(sessions[j].Started)
	})
	return sessions, nil
}

func (s *Store) Load(id string) (*SessionMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, id, "metadata.json"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%s: %w", id, ErrNoSession)
		}
		return nil, err
	}

	var meta SessionMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

// LoadRecords reads back the steps of a session. Rows that do not parse
// are skipped.
func (s *Store) LoadRecords(id string) ([]Record, error) {
	file, err := os.Open(filepath.Join(s.baseDir, id, stepsFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%s: %w", id, ErrNoSession)
		}
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(rows) < 2 {
		return []Record{}, nil
	}

	width := 4 + len(commandColumns) + bridge.StateFields
	records := make([]Record, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if len(row) != width {
			continue
		}
		rec, ok := parseRecord(row)
		if !ok {
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}

func parseRecord(row []string) (Record, bool) {
	var rec Record
	var err error
	if rec.Index, err = strconv.Atoi(row[0]); err != nil {
		return rec, false
	}
	if rec.Episode, err = strconv.Atoi(row[1]); err != nil {
		return rec, false
	}
	if rec.Time, err = strconv.ParseFloat(row[2], 64); err != nil {
		return rec, false
	}
	rec.Mode = row[3]

	for _, field := range row[4 : 4+len(commandColumns)] {
		if field == "" {
			continue
		}
		v, err := strconv.ParseFloat(field, 64)
		if err != nil {
			return rec, false
		}
		rec.Command = append(rec.Command, v)
	}
	for i, field := range row[4+len(commandColumns):] {
		v, err := strconv.ParseFloat(field, 64)
		if err != nil {
			return rec, false
		}
		rec.State[i] = v
	}
	return rec, true
}

// LoadStates returns the state and time columns of a session.
func (s *Store) LoadStates(id string) ([]bridge.StateVector, []float64, error) {
	records, err := s.LoadRecords(id)
	if err != nil {
		return nil, nil, err
	}
	states := make([]bridge.StateVector, len(records))
	times := make([]float64, len(records))
	for i, r := range records {
		states[i] = r.State
		times[i] = r.Time
	}
	return states, times, nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
