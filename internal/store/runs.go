package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/esglens/esglens/internal/esg"
)

// Run is one archived report as served to a user.
type Run struct {
	ID        string     `json:"id"`
	User      string     `json:"user"`
	Report    esg.Report `json:"report"`
	Insights  []string   `json:"insights"`
	CreatedAt time.Time  `json:"createdAt"`
}

// SaveRun archives report and insights under user ("anonymous" when
// empty).
func (s *Store) SaveRun(ctx context.Context, user string, report esg.Report, insights []string) (Run, error) {
	if user == "" {
		user = "anonymous"
	}
	if insights == nil {
		insights = []string{}
	}
	run := Run{
		ID:        ulid.Make().String(),
		User:      user,
		Report:    report,
		Insights:  insights,
		CreatedAt: s.now().UTC().Truncate(time.Millisecond),
	}

	sections, err := report.Sections()
	if err != nil {
		return Run{}, fmt.Errorf("encoding report: %w", err)
	}
	cols := make([]string, 0, len(reportSections)+1)
	for _, key := range reportSections {
		// Uploaded reports may omit a section; it reads back absent.
		if enc, ok := sections[key]; ok {
			cols = append(cols, string(enc))
			continue
		}
		cols = append(cols, "null")
	}
	enc, err := marshalColumn("insights", insights)
	if err != nil {
		return Run{}, err
	}
	cols = append(cols, enc)

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO runs (id, user, summary, metrics, environmental_metrics, social_metrics,
			governance_metrics, insights, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.User, cols[0], cols[1], cols[2], cols[3], cols[4], cols[5], toMillis(run.CreatedAt))
	if err != nil {
		return Run{}, fmt.Errorf("saving run: %w", err)
	}

	s.logger.Debug().Str("operation", "save_run").Str("run_id", run.ID).Str("user", user).Msg("run archived")
	return run, nil
}

// reportSections are the JSON keys of the archived report sections, in
// runColumns order.
//
//nolint:gochecknoglobals // Read-only lookup table.
var reportSections = []string{
	"summary", "metrics", "environmentalMetrics", "socialMetrics", "governanceMetrics",
}

const runColumns = `id, user, summary, metrics, environmental_metrics, social_metrics,
	governance_metrics, insights, created_at`

// GetRun returns the run with id or ErrNotFound.
func (s *Store) GetRun(ctx context.Context, id string) (Run, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id = ?`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, ErrNotFound
	}
	return run, err
}

// ListRuns returns the newest runs first.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+runColumns+` FROM runs ORDER BY created_at DESC, id DESC LIMIT ?`, clampLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	defer rows.Close()

	out := []Run{}
	for rows.Next() {
		run, scanErr := scanRun(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		out = append(out, run)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(sc scanner) (Run, error) {
	var (
		run                             Run
		summary, metrics, env, soc, gov string
		insights                        string
		createdAt                       int64
	)
	if err := sc.Scan(&run.ID, &run.User, &summary, &metrics, &env, &soc, &gov, &insights, &createdAt); err != nil {
		return Run{}, err
	}

	doc := make(map[string]json.RawMessage, len(reportSections))
	for i, data := range []string{summary, metrics, env, soc, gov} {
		if data != "null" {
			doc[reportSections[i]] = json.RawMessage(data)
		}
	}
	encoded, err := json.Marshal(doc)
	if err != nil {
		return Run{}, fmt.Errorf("decoding report: %w", err)
	}
	if err = json.Unmarshal(encoded, &run.Report); err != nil {
		return Run{}, fmt.Errorf("decoding report: %w", err)
	}
	if err = unmarshalColumn("insights", insights, &run.Insights); err != nil {
		return Run{}, err
	}
	run.CreatedAt = fromMillis(createdAt)
	return run, nil
}
