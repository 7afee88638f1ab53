package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Kind names the pipeline that produced an entry.
type Kind string

const (
	KindClone Kind = "clone"
	KindTTS   Kind = "tts"
)

// Status is the recorded outcome.
type Status string

const (
	StatusOK     Status = "ok"
	StatusFailed Status = "failed"
	// StatusRunning marks a job whose stages have not finished. The final
	// Record for the same ID replaces it.
	StatusRunning Status = "running"
)

// Entry is one recorded pipeline run.
type Entry struct {
	ID            string
	Kind          Kind
	Status        Status
	FailureCode   int
	VoiceLabel    string
	SourcePath    string
	Text          string
	Language      string
	OutputPath    string
	SynthesisTime float64
	Duration      float64
	Signed        bool
	Message       string
	CreatedAt     time.Time
}

const entryColumns = "id, kind, status, failure_code, voice_label, source_path, input_text, language, output_path, synthesis_time, duration, signed, message, created_at"

// Record stores entry. A missing CreatedAt is set to now; an existing ID is
// overwritten.
func (s *Store) Record(ctx context.Context, entry Entry) error {
	if strings.TrimSpace(entry.ID) == "" {
		return errors.New("history entry requires an id")
	}
	if entry.Kind == "" {
		return errors.New("history entry requires a kind")
	}
	if entry.Status == "" {
		entry.Status = StatusOK
		if entry.FailureCode != 0 {
			entry.Status = StatusFailed
		}
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	_, err := s.execWithRetry(ctx,
		`INSERT OR REPLACE INTO jobs (`+entryColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ID,
		string(entry.Kind),
		string(entry.Status),
		entry.FailureCode,
		nullableString(entry.VoiceLabel),
		nullableString(entry.SourcePath),
		nullableString(entry.Text),
		nullableString(entry.Language),
		nullableString(entry.OutputPath),
		entry.SynthesisTime,
		entry.Duration,
		boolToInt(entry.Signed),
		nullableString(entry.Message),
		entry.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("record job %s: %w", entry.ID, err)
	}
	return nil
}

// Get returns the entry with id, or nil when it does not exist.
func (s *Store) Get(ctx context.Context, id string) (*Entry, error) {
	row := s.db.QueryRowContext(ensureContext(ctx), `SELECT `+entryColumns+` FROM jobs WHERE id = ?`, id)
	entry, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get job: %w", err)
	}
	return entry, nil
}

// List returns the most recent entries, newest first. A limit <= 0 returns all.
func (s *Store) List(ctx context.Context, limit int) ([]*Entry, error) {
	query := `SELECT ` + entryColumns + ` FROM jobs ORDER BY created_at DESC, id`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ensureContext(ctx), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	defer rows.Close()

	var entries []*Entry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// Stats counts entries per status.
func (s *Store) Stats(ctx context.Context) (map[Status]int, error) {
	rows, err := s.db.QueryContext(ensureContext(ctx), `SELECT status, COUNT(1) FROM jobs GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("history stats: %w", err)
	}
	defer rows.Close()

	stats := make(map[Status]int)
	for rows.Next() {
		var status Status
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		stats[status] = count
	}
	return stats, rows.Err()
}

// Clear removes every entry and reports how many were deleted.
func (s *Store) Clear(ctx context.Context) (int64, error) {
	res, err := s.execWithRetry(ctx, `DELETE FROM jobs`)
	if err != nil {
		return 0, fmt.Errorf("clear history: %w", err)
	}
	return res.RowsAffected()
}

func scanEntry(scanner interface{ Scan(dest ...any) error }) (*Entry, error) {
	var (
		entry      Entry
		kind       string
		status     string
		voiceLabel sql.NullString
		sourcePath sql.NullString
		text       sql.NullString
		language   sql.NullString
		outputPath sql.NullString
		synthesis  sql.NullFloat64
		duration   sql.NullFloat64
		signed     sql.NullInt64
		message    sql.NullString
		createdRaw string
	)
	if err := scanner.Scan(
		&entry.ID,
		&kind,
		&status,
		&entry.FailureCode,
		&voiceLabel,
		&sourcePath,
		&text,
		&language,
		&outputPath,
		&synthesis,
		&duration,
		&signed,
		&message,
		&createdRaw,
	); err != nil {
		return nil, err
	}
	entry.Kind = Kind(kind)
	entry.Status = Status(status)
	entry.VoiceLabel = voiceLabel.String
	entry.SourcePath = sourcePath.String
	entry.Text = text.String
	entry.Language = language.String
	entry.OutputPath = outputPath.String
	entry.SynthesisTime = synthesis.Float64
	entry.Duration = duration.Float64
	entry.Signed = signed.Valid && signed.Int64 != 0
	entry.Message = message.String
	if created, err := time.Parse(time.RFC3339Nano, createdRaw); err == nil {
		entry.CreatedAt = created
	}
	return &entry, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}
