package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"MomentumRank/internal/domain/models"
	domrepo "MomentumRank/internal/domain/repository"
	pkgch "MomentumRank/pkg/clickhouse"
	applogger "MomentumRank/pkg/logger"
	"MomentumRank/pkg/util"
)

const dailyClosesTable = "daily_closes"

// CHPriceArchive stores and serves daily closes from ClickHouse.
// ReplacingMergeTree collapses re-downloaded days on merge; reads use FINAL.
type CHPriceArchive struct {
	client *pkgch.Client
	db     *sql.DB
	l      *applogger.Logger
}

func NewCHPriceArchive(ch *pkgch.Client) *CHPriceArchive {
	return &CHPriceArchive{client: ch, db: ch.DB()}
}

// SetLogger injects a structured logger.
func (s *CHPriceArchive) SetLogger(l *applogger.Logger) { s.l = l }

// Init creates the table if needed.
func (s *CHPriceArchive) Init(ctx context.Context) error {
	return s.client.InitSchema(ctx, []string{fmt.Sprintf(`
        CREATE TABLE IF NOT EXISTS %s (
            symbol     LowCardinality(String),
            d          Date,
            close      Float64,
            fetched_at DateTime DEFAULT now()
        )
        ENGINE = ReplacingMergeTree(fetched_at)
        ORDER BY (symbol, d)
    `, dailyClosesTable)})
}

// StoreCloses inserts every point of table in one batch.
func (s *CHPriceArchive) StoreCloses(ctx context.Context, table models.PriceTable) error {
	start := time.Now()
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin insert: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf("INSERT INTO %s (symbol, d, close)", dailyClosesTable))
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	rows := 0
	for _, series := range table.Series {
		for _, p := range series.Points {
			if _, err := stmt.ExecContext(ctx, series.Symbol, p.Date, p.Close); err != nil {
				_ = tx.Rollback()
				return fmt.Errorf("append %s: %w", series.Symbol, err)
			}
			rows++
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit insert: %w", err)
	}

	if s.l != nil {
		s.l.Debug("clickhouse closes stored",
			applogger.Int("rows", rows),
			applogger.Int("symbols", len(table.Series)),
			applogger.Duration("duration_ms", time.Since(start)),
		)
	}
	return nil
}

// GetCloses reads archived closes for symbols in [start, end].
func (s *CHPriceArchive) GetCloses(ctx context.Context, symbols []string, start, end time.Time) (models.PriceTable, error) {
	if len(symbols) == 0 {
		return models.PriceTable{}, nil
	}
	if end.IsZero() {
		end = util.TruncateDay(time.Now())
	}
	const qtpl = `
        SELECT symbol, d, close
        FROM %s FINAL
        WHERE has(?, symbol) AND d >= toDate(?) AND d <= toDate(?)
        ORDER BY symbol ASC, d ASC
    `
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(qtpl, dailyClosesTable), symbols, start, end)
	if err != nil {
		if s.l != nil {
			s.l.Error("clickhouse get_closes query error",
				applogger.Int("symbols", len(symbols)),
				applogger.Error(err),
			)
		}
		return models.PriceTable{}, fmt.Errorf("get closes: %w", err)
	}
	defer rows.Close()

	bySymbol := make(map[string]*models.PriceSeries, len(symbols))
	for rows.Next() {
		var (
			sym string
			p   models.PricePoint
		)
		if err := rows.Scan(&sym, &p.Date, &p.Close); err != nil {
			return models.PriceTable{}, fmt.Errorf("scan closes: %w", err)
		}
		if p.Close <= 0 {
			continue
		}
		p.Date = util.TruncateDay(p.Date)
		ps, ok := bySymbol[sym]
		if !ok {
			ps = &models.PriceSeries{Symbol: sym}
			bySymbol[sym] = ps
		}
		ps.Points = append(ps.Points, p)
	}
	if err := rows.Err(); err != nil {
		return models.PriceTable{}, fmt.Errorf("iterate closes: %w", err)
	}

	table := models.PriceTable{}
	for _, sym := range symbols {
		if ps, ok := bySymbol[sym]; ok {
			table.Series = append(table.Series, *ps)
		}
	}
	return table, nil
}

func (s *CHPriceArchive) Close() error {
	return nil // Managed by pkg
}

// ArchivingPriceStore reads through an upstream supplier, archives what it
// fetched and fills symbols the upstream missed from the archive.
type ArchivingPriceStore struct {
	upstream domrepo.PriceStore
	archive  domrepo.PriceArchive
	l        *applogger.Logger
}

func NewArchivingPriceStore(upstream domrepo.PriceStore, archive domrepo.PriceArchive) *ArchivingPriceStore {
	return &ArchivingPriceStore{upstream: upstream, archive: archive}
}

// SetLogger injects a structured logger.
func (s *ArchivingPriceStore) SetLogger(l *applogger.Logger) { s.l = l }

func (s *ArchivingPriceStore) GetCloses(ctx context.Context, symbols []string, start, end time.Time) (models.PriceTable, error) {
	table, upErr := s.upstream.GetCloses(ctx, symbols, start, end)
	if upErr != nil && s.l != nil {
		s.l.Warn("upstream price fetch failed, using archive", applogger.Error(upErr))
	}

	if len(table.Series) > 0 {
		if err := s.archive.StoreCloses(ctx, table); err != nil && s.l != nil {
			s.l.Warn("archive closes failed", applogger.Error(err))
		}
	}

	have := make(map[string]bool, len(table.Series))
	for _, sym := range table.Symbols() {
		have[sym] = true
	}
	var missing []string
	for _, sym := range symbols {
		if !have[sym] {
			missing = append(missing, sym)
		}
	}
	if len(missing) == 0 {
		return table, nil
	}

	archived, err := s.archive.GetCloses(ctx, missing, start, end)
	if err != nil {
		if s.l != nil {
			s.l.Warn("archive read failed", applogger.Error(err))
		}
		if len(table.Series) == 0 {
			return table, upErr
		}
		return table, nil
	}
	if s.l != nil && len(archived.Series) > 0 {
		s.l.Info("filled symbols from archive",
			applogger.Int("missing", len(missing)),
			applogger.Int("filled", len(archived.Series)),
		)
	}

	table.Series = append(table.Series, archived.Series...)
	table = table.Reorder(symbols)
	if table.Empty() {
		if upErr != nil {
			return table, upErr
		}
		return table, models.ErrNoPriceData
	}
	return table, nil
}

var (
	_ domrepo.PriceArchive = (*CHPriceArchive)(nil)
	_ domrepo.PriceStore   = (*ArchivingPriceStore)(nil)
)
