package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

const runColumns = `id, started_at, cutlist_path, output_path, project_dir, row_count,
	unmatched_count, tool_diameter, files_changed`

// Record stores a run with its file changes and exported rows in one
// transaction and returns the new run ID.
func (s *Store) Record(ctx context.Context, run *Run) (int64, error) {
	ctx = ensureContext(ctx)
	if run == nil {
		return 0, errors.New("record run: nil run")
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now()
	}

	var id int64
	err := retryOnBusy(ctx, func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		defer func() { _ = tx.Rollback() }()

		res, err := tx.ExecContext(ctx,
			`INSERT INTO runs (started_at, cutlist_path, output_path, project_dir, row_count,
				unmatched_count, tool_diameter, files_changed)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			run.StartedAt.UTC().Format(time.RFC3339Nano),
			run.CutlistPath,
			run.OutputPath,
			run.ProjectDir,
			run.RowCount,
			run.UnmatchedCount,
			run.ToolDiameter,
			run.FilesChanged,
		)
		if err != nil {
			return err
		}
		id, err = res.LastInsertId()
		if err != nil {
			return err
		}

		for _, f := range run.Files {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO file_changes (run_id, path, backup_path, changed, component_removed,
					macro124_removed, conversions, la_100, br_100, error)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				id, f.Path, nullableString(f.BackupPath), boolToInt(f.Changed),
				boolToInt(f.ComponentRemoved), f.Macro124Removed, f.Conversions,
				f.LA100, f.BR100, nullableString(f.Error),
			); err != nil {
				return err
			}
		}
		for _, r := range run.Rows {
			if _, err := tx.ExecContext(ctx,
				`INSERT OR IGNORE INTO exported_rows (run_id, unique_id, project, cabinet, reference)
				VALUES (?, ?, ?, ?, ?)`,
				id, r.UniqueID, r.Project, r.Cabinet, r.Reference,
			); err != nil {
				return err
			}
		}
		return tx.Commit()
	})
	if err != nil {
		return 0, fmt.Errorf("record run: %w", err)
	}
	run.ID = id
	return id, nil
}

// List returns the most recent runs first, without files or rows. A limit
// <= 0 returns every run.
func (s *Store) List(ctx context.Context, limit int) ([]Run, error) {
	ctx = ensureContext(ctx)
	query := `SELECT ` + runColumns + ` FROM runs ORDER BY id DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		out = append(out, *run)
	}
	return out, rows.Err()
}

// Get returns a run with its files and rows, or nil when it does not exist.
func (s *Store) Get(ctx context.Context, id int64) (*Run, error) {
	ctx = ensureContext(ctx)
	run, err := scanRun(s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get run: %w", err)
	}

	files, err := s.db.QueryContext(ctx,
		`SELECT path, backup_path, changed, component_removed, macro124_removed, conversions,
			la_100, br_100, error
		FROM file_changes WHERE run_id = ? ORDER BY id`, id)
	if err != nil {
		return nil, fmt.Errorf("get run files: %w", err)
	}
	defer files.Close()
	for files.Next() {
		var (
			f                  FileChange
			backup, errText    sql.NullString
			changed, component int
			la, br             sql.NullFloat64
		)
		if err := files.Scan(&f.Path, &backup, &changed, &component, &f.Macro124Removed,
			&f.Conversions, &la, &br, &errText); err != nil {
			return nil, fmt.Errorf("scan file change: %w", err)
		}
		f.BackupPath = backup.String
		f.Changed = changed != 0
		f.ComponentRemoved = component != 0
		f.LA100 = la.Float64
		f.BR100 = br.Float64
		f.Error = errText.String
		run.Files = append(run.Files, f)
	}
	if err := files.Err(); err != nil {
		return nil, err
	}

	exported, err := s.db.QueryContext(ctx,
		`SELECT unique_id, project, cabinet, reference FROM exported_rows
		WHERE run_id = ? ORDER BY unique_id`, id)
	if err != nil {
		return nil, fmt.Errorf("get run rows: %w", err)
	}
	defer exported.Close()
	for exported.Next() {
		var (
			r                           ExportedRow
			project, cabinet, reference sql.NullString
		)
		if err := exported.Scan(&r.UniqueID, &project, &cabinet, &reference); err != nil {
			return nil, fmt.Errorf("scan exported row: %w", err)
		}
		r.Project = project.String
		r.Cabinet = cabinet.String
		r.Reference = reference.String
		run.Rows = append(run.Rows, r)
	}
	return run, exported.Err()
}

// PreviouslyExported maps each already-exported Unique_ID in ids to the most
// recent run that exported it.
func (s *Store) PreviouslyExported(ctx context.Context, ids []string) (map[string]int64, error) {
	ctx = ensureContext(ctx)
	out := map[string]int64{}
	if len(ids) == 0 {
		return out, nil
	}
	const chunk = 500
	for start := 0; start < len(ids); start += chunk {
		end := min(start+chunk, len(ids))
		batch := ids[start:end]
		placeholders := strings.TrimSuffix(strings.Repeat("?,", len(batch)), ",")
		args := make([]any, len(batch))
		for i, id := range batch {
			args[i] = id
		}
		rows, err := s.db.QueryContext(ctx,
			`SELECT unique_id, MAX(run_id) FROM exported_rows
			WHERE unique_id IN (`+placeholders+`) GROUP BY unique_id`, args...)
		if err != nil {
			return nil, fmt.Errorf("query exported ids: %w", err)
		}
		for rows.Next() {
			var (
				uid   string
				runID int64
			)
			if err := rows.Scan(&uid, &runID); err != nil {
				rows.Close()
				return nil, fmt.Errorf("scan exported id: %w", err)
			}
			out[uid] = runID
		}
		err = rows.Err()
		rows.Close()
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (*Run, error) {
	var (
		run     Run
		started string
	)
	if err := row.Scan(&run.ID, &started, &run.CutlistPath, &run.OutputPath, &run.ProjectDir,
		&run.RowCount, &run.UnmatchedCount, &run.ToolDiameter, &run.FilesChanged); err != nil {
		return nil, err
	}
	if ts, err := time.Parse(time.RFC3339Nano, started); err == nil {
		run.StartedAt = ts
	}
	return &run, nil
}

func nullableString(v string) any {
	if v == "" {
		return nil
	}
	return v
}

func boolToInt(v bool) int {
	if v {
		return 1
	}
	return 0
}
