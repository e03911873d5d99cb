package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

// Stage kinds, matching the directory names under a dataset
const (
	KindDataset = "ds"
	KindText    = "text"
	KindWav     = "wav"
	KindMel     = "mel"
	KindFinal   = "final"
)

// Stage is one catalog row
type Stage struct {
	Dataset     string
	Kind        string
	Name        string
	ParentKind  string
	ParentName  string
	Operation   string
	Params      map[string]string
	Entries     int
	RunID       string
	PublishedAt time.Time
}

// RecordStage inserts or replaces the catalog row for a published stage
func (s *Store) RecordStage(st *Stage) error {
	if s == nil {
		return nil
	}

	params := ""
	if len(st.Params) > 0 {
		data, err := json.Marshal(st.Params)
		if err != nil {
			return fmt.Errorf("failed to encode params: %w", err)
		}
		params = string(data)
	}

	_, err := s.db.Exec(`
		INSERT INTO stages (dataset, kind, name, parent_kind, parent_name, operation, params_json, entries, run_id, published_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(dataset, kind, name) DO UPDATE SET
			parent_kind = excluded.parent_kind,
			parent_name = excluded.parent_name,
			operation = excluded.operation,
			params_json = excluded.params_json,
			entries = excluded.entries,
			run_id = excluded.run_id,
			published_at = excluded.published_at
	`, st.Dataset, st.Kind, st.Name, st.ParentKind, st.ParentName, st.Operation, params, st.Entries, st.RunID, time.Now())
	if err != nil {
		return fmt.Errorf("failed to record stage: %w", err)
	}

	return nil
}

// GetStage returns a catalog row, or nil when the stage was never recorded
func (s *Store) GetStage(dataset, kind, name string) (*Stage, error) {
	row := s.db.QueryRow(`
		SELECT dataset, kind, name, COALESCE(parent_kind, ''), COALESCE(parent_name, ''),
		       operation, COALESCE(params_json, ''), entries, COALESCE(run_id, ''), published_at
		FROM stages WHERE dataset = ? AND kind = ? AND name = ?
	`, dataset, kind, name)

	st, err := scanStage(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get stage: %w", err)
	}
	return st, nil
}

// ListStages returns all stages of a dataset ordered by kind and publish time
func (s *Store) ListStages(dataset string) ([]*Stage, error) {
	rows, err := s.db.Query(`
		SELECT dataset, kind, name, COALESCE(parent_kind, ''), COALESCE(parent_name, ''),
		       operation, COALESCE(params_json, ''), entries, COALESCE(run_id, ''), published_at
		FROM stages WHERE dataset = ?
		ORDER BY CASE kind
			WHEN 'ds' THEN 0 WHEN 'text' THEN 1 WHEN 'wav' THEN 2 WHEN 'mel' THEN 3 ELSE 4 END,
			published_at, name
	`, dataset)
	if err != nil {
		return nil, fmt.Errorf("failed to list stages: %w", err)
	}
	defer rows.Close()

	var stages []*Stage
	for rows.Next() {
		st, err := scanStage(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan stage: %w", err)
		}
		stages = append(stages, st)
	}

	return stages, rows.Err()
}

// RemoveStage deletes a catalog row. Removing an unknown stage is not an error.
func (s *Store) RemoveStage(dataset, kind, name string) error {
	if s == nil {
		return nil
	}
	_, err := s.db.Exec("DELETE FROM stages WHERE dataset = ? AND kind = ? AND name = ?", dataset, kind, name)
	if err != nil {
		return fmt.Errorf("failed to remove stage: %w", err)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanStage(row scanner) (*Stage, error) {
	st := &Stage{}
	var params string
	if err := row.Scan(&st.Dataset, &st.Kind, &st.Name, &st.ParentKind, &st.ParentName,
		&st.Operation, &params, &st.Entries, &st.RunID, &st.PublishedAt); err != nil {
		return nil, err
	}
	if params != "" {
		if err := json.Unmarshal([]byte(params), &st.Params); err != nil {
			return nil, fmt.Errorf("failed to decode params: %w", err)
		}
	}
	return st, nil
}
