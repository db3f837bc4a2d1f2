package recorder

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"

	"StockPicker/internal/collector"
	"StockPicker/internal/model"
)

// ErrRunNotFound is returned by LoadRun for an unknown run ID.
var ErrRunNotFound = errors.New("run not found")

// SQLiteRecorder persists report runs to a SQLite database.
type SQLiteRecorder struct {
	db     *sql.DB
	mu     sync.Mutex
	logger zerolog.Logger
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string, logger zerolog.Logger) (*SQLiteRecorder, error) {
	if dir := filepath.Dir(dbPath); dir != "." && !strings.HasPrefix(dbPath, "file:") && dbPath != ":memory:" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// One connection keeps writes serialized and :memory: databases shared.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db, logger: logger.With().Str("component", "recorder").Logger()}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	r.logger.Info().Str("path", dbPath).Msg("sqlite recorder opened")
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id          TEXT PRIMARY KEY,
			provider    TEXT NOT NULL,
			started_at  INTEGER NOT NULL,
			finished_at INTEGER NOT NULL,
			tickers     TEXT NOT NULL,
			snapshot    INTEGER NOT NULL,
			growth      INTEGER NOT NULL,
			errors      INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at)`,

		`CREATE TABLE IF NOT EXISTS snapshots (
			id             INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id         TEXT NOT NULL REFERENCES runs(id),
			position       INTEGER NOT NULL,
			ticker         TEXT NOT NULL,
			eps            TEXT,
			pe_ratio       TEXT,
			roe            TEXT,
			debt_to_equity TEXT,
			free_cash_flow TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_snapshots_run ON snapshots(run_id)`,

		`CREATE TABLE IF NOT EXISTS growth (
			id                   INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id               TEXT NOT NULL REFERENCES runs(id),
			position             INTEGER NOT NULL,
			ticker               TEXT NOT NULL,
			revenue_3y_ago       TEXT,
			revenue_last_year    TEXT,
			revenue_growth       TEXT,
			net_income_3y_ago    TEXT,
			net_income_last_year TEXT,
			net_income_growth    TEXT,
			eps_3y_ago           TEXT,
			eps_last_year        TEXT,
			eps_growth           TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_growth_run ON growth(run_id)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

// RecordRun stores a run and all of its rows in one transaction.
// Values are stored in their rendered form so N/A and Error survive the round trip.
func (r *SQLiteRecorder) RecordRun(ctx context.Context, res *collector.Result) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `INSERT INTO runs
		(id, provider, started_at, finished_at, tickers, snapshot, growth, errors)
		VALUES (?,?,?,?,?,?,?,?)`,
		res.RunID, res.Provider, res.StartedAt.Unix(), res.FinishedAt.Unix(),
		strings.Join(res.Tickers, ","), boolInt(res.Sections.Snapshot), boolInt(res.Sections.Growth),
		countErrors(res),
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	for i, s := range res.Snapshots {
		_, err := tx.ExecContext(ctx, `INSERT INTO snapshots
			(run_id, position, ticker, eps, pe_ratio, roe, debt_to_equity, free_cash_flow)
			VALUES (?,?,?,?,?,?,?,?)`,
			res.RunID, i, s.Ticker,
			s.EPS.String(), s.PERatio.String(), s.ROE.String(), s.DebtToEquity.String(), s.FreeCashFlow.String(),
		)
		if err != nil {
			return fmt.Errorf("insert snapshot %s: %w", s.Ticker, err)
		}
	}

	for i, g := range res.Growth {
		_, err := tx.ExecContext(ctx, `INSERT INTO growth
			(run_id, position, ticker,
			 revenue_3y_ago, revenue_last_year, revenue_growth,
			 net_income_3y_ago, net_income_last_year, net_income_growth,
			 eps_3y_ago, eps_last_year, eps_growth)
			VALUES (?,?,?,?,?,?,?,?,?,?,?,?)`,
			res.RunID, i, g.Ticker,
			g.RevenueEarliest.String(), g.RevenueLatest.String(), g.RevenueGrowth.String(),
			g.NetIncomeEarliest.String(), g.NetIncomeLatest.String(), g.NetIncomeGrowth.String(),
			g.EPSEarliest.String(), g.EPSLatest.String(), g.EPSGrowth.String(),
		)
		if err != nil {
			return fmt.Errorf("insert growth %s: %w", g.Ticker, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	r.logger.Debug().Str("run_id", res.RunID).Msg("run recorded")
	return nil
}

// ListRuns returns the most recent runs, newest first.
func (r *SQLiteRecorder) ListRuns(ctx context.Context, limit int) ([]RunSummary, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := r.db.QueryContext(ctx, `SELECT
			r.id, r.provider, r.started_at, r.finished_at, r.tickers, r.errors,
			(SELECT COUNT(*) FROM snapshots s WHERE s.run_id = r.id),
			(SELECT COUNT(*) FROM growth g WHERE g.run_id = r.id)
		FROM runs r
		ORDER BY r.started_at DESC, r.rowid DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var out []RunSummary
	for rows.Next() {
		var (
			s                 RunSummary
			started, finished int64
			tickers           string
		)
		if err := rows.Scan(&s.RunID, &s.Provider, &started, &finished, &tickers, &s.Errors, &s.Snapshots, &s.Growth); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		s.StartedAt = time.Unix(started, 0)
		s.FinishedAt = time.Unix(finished, 0)
		s.Tickers = splitTickers(tickers)
		out = append(out, s)
	}
	return out, rows.Err()
}

// LoadRun rebuilds a recorded run so it can be rendered again.
// Statements are not stored, so Financials is always empty.
func (r *SQLiteRecorder) LoadRun(ctx context.Context, runID string) (*collector.Result, error) {
	res := &collector.Result{RunID: runID}
	var (
		started, finished int64
		tickers           string
		snapshot, growth  int
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT provider, started_at, finished_at, tickers, snapshot, growth FROM runs WHERE id = ?`, runID).
		Scan(&res.Provider, &started, &finished, &tickers, &snapshot, &growth)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	if err != nil {
		return nil, fmt.Errorf("query run: %w", err)
	}
	res.StartedAt = time.Unix(started, 0)
	res.FinishedAt = time.Unix(finished, 0)
	res.Tickers = splitTickers(tickers)
	res.Sections = collector.Sections{Snapshot: snapshot == 1, Growth: growth == 1}

	if err := r.loadSnapshots(ctx, res); err != nil {
		return nil, err
	}
	if err := r.loadGrowth(ctx, res); err != nil {
		return nil, err
	}
	return res, nil
}

func (r *SQLiteRecorder) loadSnapshots(ctx context.Context, res *collector.Result) error {
	rows, err := r.db.QueryContext(ctx, `SELECT ticker, eps, pe_ratio, roe, debt_to_equity, free_cash_flow
		FROM snapshots WHERE run_id = ? ORDER BY position`, res.RunID)
	if err != nil {
		return fmt.Errorf("query snapshots: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var ticker string
		cols := make([]string, 5)
		if err := rows.Scan(&ticker, &cols[0], &cols[1], &cols[2], &cols[3], &cols[4]); err != nil {
			return fmt.Errorf("scan snapshot: %w", err)
		}
		res.Snapshots = append(res.Snapshots, &model.Snapshot{
			Ticker:       ticker,
			EPS:          model.ParseValue(cols[0]),
			PERatio:      model.ParseValue(cols[1]),
			ROE:          model.ParseValue(cols[2]),
			DebtToEquity: model.ParseValue(cols[3]),
			FreeCashFlow: model.ParseValue(cols[4]),
		})
	}
	return rows.Err()
}

func (r *SQLiteRecorder) loadGrowth(ctx context.Context, res *collector.Result) error {
	rows, err := r.db.QueryContext(ctx, `SELECT ticker,
			revenue_3y_ago, revenue_last_year, revenue_growth,
			net_income_3y_ago, net_income_last_year, net_income_growth,
			eps_3y_ago, eps_last_year, eps_growth
		FROM growth WHERE run_id = ? ORDER BY position`, res.RunID)
	if err != nil {
		return fmt.Errorf("query growth: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var ticker string
		c := make([]string, 9)
		if err := rows.Scan(&ticker, &c[0], &c[1], &c[2], &c[3], &c[4], &c[5], &c[6], &c[7], &c[8]); err != nil {
			return fmt.Errorf("scan growth: %w", err)
		}
		res.Growth = append(res.Growth, &model.GrowthRecord{
			Ticker:            ticker,
			RevenueEarliest:   model.ParseValue(c[0]),
			RevenueLatest:     model.ParseValue(c[1]),
			RevenueGrowth:     model.ParseValue(c[2]),
			NetIncomeEarliest: model.ParseValue(c[3]),
			NetIncomeLatest:   model.ParseValue(c[4]),
			NetIncomeGrowth:   model.ParseValue(c[5]),
			EPSEarliest:       model.ParseValue(c[6]),
			EPSLatest:         model.ParseValue(c[7]),
			EPSGrowth:         model.ParseValue(c[8]),
		})
		res.Financials = append(res.Financials, nil)
	}
	return rows.Err()
}

func (r *SQLiteRecorder) Close() error {
	r.logger.Info().Msg("closing sqlite recorder")
	return r.db.Close()
}

func countErrors(res *collector.Result) int {
	n := 0
	for _, s := range res.Snapshots {
		if hasError(s.Cells()) {
			n++
		}
	}
	for _, g := range res.Growth {
		if hasError(g.Cells()) {
			n++
		}
	}
	return n
}

func hasError(values []model.Value) bool {
	for _, v := range values {
		if v.IsError() {
			return true
		}
	}
	return false
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func splitTickers(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ",")
}
