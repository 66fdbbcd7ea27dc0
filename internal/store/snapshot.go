package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/alexanderramin/riff/internal/domain"
)

// ExportSnapshot encodes the aggregate as an indented JSON backup document.
func (s *Store) ExportSnapshot() ([]byte, error) {
	data := s.Data()
	out, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding snapshot: %w", err)
	}
	return out, nil
}

// ImportSnapshot replaces the whole aggregate with the backup in raw. The
// document must carry exercises and routines arrays; logs defaults to empty.
// On any error the aggregate is left unchanged.
func (s *Store) ImportSnapshot(ctx context.Context, raw []byte) error {
	data, err := ParseSnapshot(raw)
	if err != nil {
		s.logger.Warn("backup import rejected", "error", err)
		return err
	}
	return s.mutate(ctx, "import_snapshot", map[string]any{
		"exercises": len(data.Exercises),
		"routines":  len(data.Routines),
		"logs":      len(data.Logs),
	}, func(d *domain.AppData) {
		*d = data
	})
}

// ParseSnapshot validates and decodes a backup document. Text that is not
// JSON is unreadable; JSON of any shape other than the backup object is
// invalid.
func ParseSnapshot(raw []byte) (domain.AppData, error) {
	if !json.Valid(raw) {
		var v any
		err := json.Unmarshal(raw, &v)
		return domain.AppData{}, fmt.Errorf("%w: %v", ErrBackupUnreadable, err)
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil || fields == nil {
		return domain.AppData{}, fmt.Errorf("%w: root is not an object", ErrInvalidBackup)
	}

	for _, required := range []string{"exercises", "routines"} {
		if !isArray(fields[required]) {
			return domain.AppData{}, fmt.Errorf("%w: missing %s", ErrInvalidBackup, required)
		}
	}
	if logs, ok := fields["logs"]; ok && !isArray(logs) && !isNull(logs) {
		return domain.AppData{}, fmt.Errorf("%w: logs is not a list", ErrInvalidBackup)
	}

	var data domain.AppData
	if err := json.Unmarshal(raw, &data); err != nil {
		return domain.AppData{}, fmt.Errorf("%w: %v", ErrInvalidBackup, err)
	}
	return data.Normalize(), nil
}

func isArray(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && trimmed[0] == '['
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}
