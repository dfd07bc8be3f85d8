package repository

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"MomentumRank/internal/domain/models"
	domrepo "MomentumRank/internal/domain/repository"
	"MomentumRank/pkg/util"
)

// CSVTickerSource loads the default universe from a ticker file on disk.
type CSVTickerSource struct {
	path string
}

func NewCSVTickerSource(path string) *CSVTickerSource {
	return &CSVTickerSource{path: path}
}

// Load reads and parses the file on every call so edits are picked up without a restart.
func (s *CSVTickerSource) Load(_ context.Context) (models.TickerSet, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return models.TickerSet{}, fmt.Errorf("open ticker file: %w", err)
	}
	defer f.Close()

	set, err := ParseTickers(f)
	if err != nil {
		return models.TickerSet{}, fmt.Errorf("%s: %w", s.path, err)
	}
	return set, nil
}

// ParseTickers reads a ticker CSV. Symbol is required; Company defaults to the
// symbol, Industry to "Unknown", Year_Added is optional. Header matching ignores
// case and surrounding spaces. Duplicate symbols keep their first row.
func ParseTickers(r io.Reader) (models.TickerSet, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return models.TickerSet{}, fmt.Errorf("%w: empty file", models.ErrInvalidTickerFile)
	}
	if err != nil {
		return models.TickerSet{}, fmt.Errorf("%w: %v", models.ErrInvalidTickerFile, err)
	}

	cols := map[string]int{}
	for i, h := range header {
		h = strings.TrimPrefix(h, "\ufeff")
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	symIdx, ok := cols["symbol"]
	if !ok {
		return models.TickerSet{}, fmt.Errorf("%w: missing required column Symbol", models.ErrInvalidTickerFile)
	}
	field := func(rec []string, name string) string {
		if i, ok := cols[name]; ok && i < len(rec) {
			return strings.TrimSpace(rec[i])
		}
		return ""
	}

	var set models.TickerSet
	seen := map[string]bool{}
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return models.TickerSet{}, fmt.Errorf("%w: line %d: %v", models.ErrInvalidTickerFile, line, err)
		}
		if symIdx >= len(rec) {
			continue
		}
		sym := util.NormalizeSymbol(rec[symIdx])
		if sym == "" || seen[sym] {
			continue
		}
		seen[sym] = true

		info := models.TickerInfo{
			Symbol:   sym,
			Company:  field(rec, "company"),
			Industry: field(rec, "industry"),
		}
		if info.Company == "" {
			info.Company = sym
		}
		if info.Industry == "" {
			info.Industry = models.UnknownIndustry
		}
		info.YearAdded = parseYear(field(rec, "year_added"))
		set.Tickers = append(set.Tickers, info)
	}

	if len(set.Tickers) == 0 {
		return models.TickerSet{}, fmt.Errorf("%w: no symbols", models.ErrInvalidTickerFile)
	}
	return set, nil
}

// ParseTickerBytes is ParseTickers over an in-memory upload.
func ParseTickerBytes(raw []byte) (models.TickerSet, error) {
	return ParseTickers(bytes.NewReader(raw))
}

func parseYear(s string) *int {
	if s == "" {
		return nil
	}
	if y, err := strconv.Atoi(s); err == nil {
		return &y
	}
	// spreadsheets like to export years as 1957.0
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		y := int(f)
		return &y
	}
	return nil
}

var _ domrepo.TickerSource = (*CSVTickerSource)(nil)
