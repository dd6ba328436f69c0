package audit

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pharos-integrity/pharos/internal/db"
)

// Store persists activity log entries in SQLite.
type Store struct {
	db  *db.DB
	now func() time.Time
}

// NewStore creates a Store backed by the given database.
func NewStore(database *db.DB) *Store {
	return &Store{db: database, now: time.Now}
}

// Log inserts a new entry. If entry.ID is empty a UUID is generated and a
// zero Timestamp is set to the current time.
func (s *Store) Log(ctx context.Context, entry Entry) error {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = s.now()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO analysis_events (
			id, timestamp, request_id, kind, source, company, sector,
			claim_count, status, error, risk_level, interpretation,
			model, duration_ms
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ID,
		entry.Timestamp.UTC().Format(time.DateTime),
		entry.RequestID,
		string(entry.Kind),
		string(entry.Source),
		entry.Company,
		entry.Sector,
		entry.ClaimCount,
		entry.Status,
		entry.Error,
		entry.RiskLevel,
		entry.Interpretation,
		entry.Model,
		entry.DurationMS,
	)
	if err != nil {
		return fmt.Errorf("inserting analysis event: %w", err)
	}
	return nil
}

const selectColumns = `SELECT id, timestamp, request_id, kind, source, company, sector,
	claim_count, status, error, risk_level, interpretation, model, duration_ms
	FROM analysis_events`

// GetByID retrieves a single entry.
func (s *Store) GetByID(ctx context.Context, id string) (*Entry, error) {
	row := s.db.QueryRowContext(ctx, selectColumns+" WHERE id = ?", id)
	return scanInto(row)
}

// QueryFilter controls which entries are returned by Query.
type QueryFilter struct {
	Kind           Kind
	Source         Source
	Company        string
	Interpretation string
	// FailedOnly keeps entries with a status of 400 or above.
	FailedOnly bool
	Since      *time.Time
	Until      *time.Time
	Limit      int
	Offset     int
}

func (f QueryFilter) where() (string, []any) {
	var (
		clauses []string
		args    []any
	)

	if f.Kind != "" {
		clauses = append(clauses, "kind = ?")
		args = append(args, string(f.Kind))
	}
	if f.Source != "" {
		clauses = append(clauses, "source = ?")
		args = append(args, string(f.Source))
	}
	if f.Company != "" {
		clauses = append(clauses, "company = ?")
		args = append(args, f.Company)
	}
	if f.Interpretation != "" {
		clauses = append(clauses, "interpretation = ?")
		args = append(args, f.Interpretation)
	}
	if f.FailedOnly {
		clauses = append(clauses, "status >= 400")
	}
	if f.Since != nil {
		clauses = append(clauses, "timestamp >= ?")
		args = append(args, f.Since.UTC().Format(time.DateTime))
	}
	if f.Until != nil {
		clauses = append(clauses, "timestamp <= ?")
		args = append(args, f.Until.UTC().Format(time.DateTime))
	}

	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

// DefaultQueryLimit caps Query when the filter sets no limit.
const DefaultQueryLimit = 100

// Query returns entries matching the filter, newest first. At most
// DefaultQueryLimit entries are returned unless filter.Limit is set.
func (s *Store) Query(ctx context.Context, filter QueryFilter) ([]Entry, error) {
	where, args := filter.where()
	query := selectColumns + where + " ORDER BY timestamp DESC, rowid DESC"

	limit := filter.Limit
	if limit <= 0 {
		limit = DefaultQueryLimit
	}
	query += fmt.Sprintf(" LIMIT %d", limit)
	if filter.Offset > 0 {
		query += fmt.Sprintf(" OFFSET %d", filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying analysis events: %w", err)
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		e, err := scanInto(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, *e)
	}
	return entries, rows.Err()
}

// Stats summarises the entries matching a filter.
type Stats struct {
	Total     int            `json:"total"`
	Failed    int            `json:"failed"`
	Fallbacks int            `json:"fallbacks"`
	Claims    int            `json:"claims"`
	ByRisk    map[string]int `json:"byRisk"`
}

// Stats aggregates entries matching the filter. Limit and Offset are ignored.
func (s *Store) Stats(ctx context.Context, filter QueryFilter) (*Stats, error) {
	where, args := filter.where()

	st := &Stats{ByRisk: map[string]int{}}
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*),
			COALESCE(SUM(CASE WHEN status >= 400 THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN interpretation = 'fallback' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(claim_count), 0)
		FROM analysis_events`+where, args...).Scan(&st.Total, &st.Failed, &st.Fallbacks, &st.Claims)
	if err != nil {
		return nil, fmt.Errorf("aggregating analysis events: %w", err)
	}

	riskWhere := " WHERE risk_level != ''"
	if where != "" {
		riskWhere = where + " AND risk_level != ''"
	}
	rows, err := s.db.QueryContext(ctx,
		"SELECT risk_level, COUNT(*) FROM analysis_events"+riskWhere+" GROUP BY risk_level", args...)
	if err != nil {
		return nil, fmt.Errorf("grouping analysis events: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var level string
		var n int
		if err := rows.Scan(&level, &n); err != nil {
			return nil, err
		}
		st.ByRisk[level] = n
	}
	return st, rows.Err()
}

// DeleteBefore removes all entries older than the given time.
// Returns the number of deleted rows.
func (s *Store) DeleteBefore(ctx context.Context, before time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM analysis_events WHERE timestamp < ?",
		before.UTC().Format(time.DateTime),
	)
	if err != nil {
		return 0, fmt.Errorf("deleting old analysis events: %w", err)
	}
	return res.RowsAffected()
}

// scanner is implemented by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanInto(sc scanner) (*Entry, error) {
	var (
		e            Entry
		ts           string
		kind, source string
	)

	err := sc.Scan(
		&e.ID, &ts, &e.RequestID, &kind, &source, &e.Company, &e.Sector,
		&e.ClaimCount, &e.Status, &e.Error, &e.RiskLevel, &e.Interpretation,
		&e.Model, &e.DurationMS,
	)
	if err != nil {
		return nil, err
	}

	e.Kind = Kind(kind)
	e.Source = Source(source)
	if t, parseErr := time.Parse(time.DateTime, ts); parseErr == nil {
		e.Timestamp = t
	}
	return &e, nil
}
