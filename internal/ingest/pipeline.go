// Package ingest reads the species CSV export, transforms each record
// into a storage row and inserts it. One bad record never stops the run:
// coercion and row-level database failures are collected per line and
// reported at the end, mirroring how the source data actually arrives
// (hand-maintained spreadsheets with the occasional broken cell).
package ingest

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dexapi/pokedex/internal/logging"
	"github.com/dexapi/pokedex/internal/pokedex"
	"github.com/google/uuid"
)

// contextCheckInterval is how often (in rows) to check for cancellation.
// A signal stops the run between rows; an in-flight insert always runs to
// completion.
const contextCheckInterval = 100

// requiredColumns is every header the source file must carry, including
// the ones the transform reads and discards.
var requiredColumns = buildRequiredColumns()

func buildRequiredColumns() []string {
	cols := []string{
		"name",
		"pokedex_id",
		"abilities",
		"typing",
		"hp",
		"attack",
		"defense",
		"special_attack",
		"special_defense",
		"speed",
		"height",
		"weight",
		"generation",
		"female_rate",
		"genderless",
		"is_legendary_or_mythical",
		"is_default",
		"forms_switchable",
		"base_experience",
		"capture_rate",
		"egg_groups",
		"base_happiness",
		"evolves_from",
		"primary_color",
		"number_pokemon_with_typing",
	}
	return append(cols, pokedex.EffectivenessColumns[:]...)
}

// Inserter persists one transformed row. Satisfied by *store.Store.
type Inserter interface {
	Insert(ctx context.Context, row pokedex.Row) error
}

// Options tunes a single ingestion run.
type Options struct {
	// RunID tags every log entry for this run. A zero value gets a fresh
	// ID assigned.
	RunID uuid.UUID

	// ProgressEvery logs progress after this many data rows (default 100).
	ProgressEvery int

	// SkipFailedFile suppresses writing the "<name> - failed.csv" report
	// next to the input.
	SkipFailedFile bool
}

// FailedRow records one input row that was not inserted.
type FailedRow struct {
	Line   int // 1-based line number in the source file
	Reason string
	Data   []string
}

// Report summarizes a completed ingestion run.
type Report struct {
	RunID     uuid.UUID
	Path      string
	TotalRows int
	Inserted  int
	Skipped   int // blank rows
	Failed    []FailedRow
	Duration  time.Duration
}

// Run ingests one CSV file. Row-level failures (coercion, constraint
// violations) land in Report.Failed and the run continues;
// infrastructure failures (unreadable file, missing columns,
// cancellation) abort with an error.
func Run(ctx context.Context, ins Inserter, path string, opts Options) (*Report, error) {
	if opts.RunID == uuid.Nil {
		opts.RunID = uuid.New()
	}
	if opts.ProgressEvery <= 0 {
		opts.ProgressEvery = 100
	}

	logger := logging.WithFields(ctx, "run_id", opts.RunID.String(), "file", filepath.Base(path))
	start := time.Now()

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1 // row width is validated against the header below

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("reading header of %s: %w", path, err)
	}
	idx, err := indexHeader(header)
	if err != nil {
		return nil, fmt.Errorf("header of %s: %w", path, err)
	}

	logger.Info("ingestion started", "columns", len(header))

	report := &Report{RunID: opts.RunID, Path: path}
	failedHeader := append([]string{"status"}, header...)

	for line := 2; ; line++ {
		if (line-2)%contextCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, fmt.Errorf("ingestion cancelled at line %d: %w", line, err)
			}
		}

		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			// A malformed CSV line is a row failure, not a run failure.
			report.TotalRows++
			report.Failed = append(report.Failed, FailedRow{
				Line:   line,
				Reason: err.Error(),
			})
			continue
		}

		if blank(row) {
			report.Skipped++
			continue
		}
		report.TotalRows++

		raw, err := buildRecord(row, idx)
		if err != nil {
			report.Failed = append(report.Failed, FailedRow{Line: line, Reason: err.Error(), Data: row})
			continue
		}

		storageRow, err := pokedex.Transform(raw)
		if err != nil {
			report.Failed = append(report.Failed, FailedRow{Line: line, Reason: err.Error(), Data: row})
			continue
		}

		if err := ins.Insert(ctx, storageRow); err != nil {
			report.Failed = append(report.Failed, FailedRow{Line: line, Reason: err.Error(), Data: row})
			continue
		}
		report.Inserted++

		if report.TotalRows%opts.ProgressEvery == 0 {
			logger.Info("ingestion progress",
				"rows", report.TotalRows,
				"inserted", report.Inserted,
				"failed", len(report.Failed),
			)
		}
	}

	report.Duration = time.Since(start)

	if len(report.Failed) > 0 && !opts.SkipFailedFile {
		if err := writeFailedFile(path, failedHeader, report.Failed); err != nil {
			logger.Warn("could not write failed-rows file", "error", err)
		}
	}

	logger.Info("ingestion finished",
		"rows", report.TotalRows,
		"inserted", report.Inserted,
		"failed", len(report.Failed),
		"skipped", report.Skipped,
		"duration_ms", report.Duration.Milliseconds(),
	)

	return report, nil
}

// indexHeader maps lowercased column names to positions and verifies all
// required columns are present. Extra columns are allowed and ignored.
func indexHeader(header []string) (map[string]int, error) {
	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[strings.ToLower(cleanCell(h))] = i
	}

	var missing []string
	for _, col := range requiredColumns {
		if _, ok := idx[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing required columns: %s", strings.Join(missing, ", "))
	}
	return idx, nil
}

// buildRecord picks the raw record's fields out of a CSV row by header
// position.
func buildRecord(row []string, idx map[string]int) (pokedex.RawRecord, error) {
	get := func(col string) (string, error) {
		pos := idx[col]
		if pos >= len(row) {
			return "", fmt.Errorf("row has %d columns, column %q is at position %d", len(row), col, pos+1)
		}
		return cleanCell(row[pos]), nil
	}

	var raw pokedex.RawRecord
	for _, f := range []struct {
		col string
		dst *string
	}{
		{"name", &raw.Name},
		{"pokedex_id", &raw.PokedexID},
		{"abilities", &raw.Abilities},
		{"typing", &raw.Typing},
		{"hp", &raw.HP},
		{"attack", &raw.Attack},
		{"defense", &raw.Defense},
		{"special_attack", &raw.SpecialAttack},
		{"special_defense", &raw.SpecialDefense},
		{"speed", &raw.Speed},
		{"height", &raw.Height},
		{"weight", &raw.Weight},
		{"generation", &raw.Generation},
		{"female_rate", &raw.FemaleRate},
		{"genderless", &raw.Genderless},
		{"is_legendary_or_mythical", &raw.LegendaryOrMythical},
		{"is_default", &raw.IsDefault},
		{"forms_switchable", &raw.FormsSwitchable},
		{"base_experience", &raw.BaseExperience},
		{"capture_rate", &raw.CaptureRate},
		{"egg_groups", &raw.EggGroups},
		{"base_happiness", &raw.BaseHappiness},
		{"evolves_from", &raw.EvolvesFrom},
		{"primary_color", &raw.PrimaryColor},
		{"number_pokemon_with_typing", &raw.NumberWithTyping},
	} {
		v, err := get(f.col)
		if err != nil {
			return pokedex.RawRecord{}, err
		}
		*f.dst = v
	}
	for i, col := range pokedex.EffectivenessColumns {
		v, err := get(col)
		if err != nil {
			return pokedex.RawRecord{}, err
		}
		raw.Effectiveness[i] = v
	}
	return raw, nil
}

func blank(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// cleanCell strips common spreadsheet-export artifacts: surrounding
// whitespace, Excel formula prefixes (="value") and stray quotes.
func cleanCell(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, `="`) && strings.HasSuffix(s, `"`) {
		s = s[2 : len(s)-1]
	} else if strings.HasPrefix(s, "=") {
		s = s[1:]
	}
	return strings.Trim(s, `"'`)
}

// writeFailedFile writes the rejected rows, each prefixed with the
// failure reason, next to the input file.
func writeFailedFile(path string, header []string, failed []FailedRow) error {
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	out := filepath.Join(filepath.Dir(path), fmt.Sprintf("%s - failed.csv", name))

	f, err := os.Create(out)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return err
	}
	for _, fr := range failed {
		record := append([]string{fmt.Sprintf("line %d: %s", fr.Line, fr.Reason)}, fr.Data...)
		if err := w.Write(record); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}
