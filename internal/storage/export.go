package storage

import (
	"encoding/json"
	"io"
	"os"

	"github.com/san-kum/stepbridge/internal/bridge"
)

type ExportData struct {
	Session SessionMetadata `json:"session"`
	Fields  []string        `json:"fields"`
	Records []Record        `json:"records"`
}

// ExportJSON writes a session and all of its steps as one JSON document.
func (s *Store) ExportJSON(w io.Writer, id string) error {
	meta, err := s.Load(id)
	if err != nil {
		return err
	}
	records, err := s.LoadRecords(id)
	if err != nil {
		return err
	}

	data := ExportData{
		Session: *meta,
		Fields:  bridge.StateFieldNames[:],
		Records: records,
	}
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

func (s *Store) ExportJSONFile(path, id string) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return s.ExportJSON(file, id)
}
