package ingest

import (
	"context"
	"encoding/csv"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dexapi/pokedex/internal/pokedex"
	"github.com/google/uuid"
)

// collectingInserter records inserted rows and can fail specific slugs.
type collectingInserter struct {
	rows     []pokedex.Row
	failSlug string
	failErr  error
}

func (c *collectingInserter) Insert(_ context.Context, row pokedex.Row) error {
	if c.failSlug != "" && row.Slug == c.failSlug {
		return c.failErr
	}
	c.rows = append(c.rows, row)
	return nil
}

// testValues returns a full set of column values for one species.
func testValues(name, hp string) map[string]string {
	v := map[string]string{
		"name":                       name,
		"pokedex_id":                 "7",
		"abilities":                  "Torrent",
		"typing":                     "water",
		"hp":                         hp,
		"attack":                     "48",
		"defense":                    "65",
		"special_attack":             "50",
		"special_defense":            "64",
		"speed":                      "43",
		"height":                     "5",
		"weight":                     "90",
		"generation":                 "1",
		"female_rate":                "0.125",
		"genderless":                 "false",
		"is_legendary_or_mythical":   "false",
		"is_default":                 "true",
		"forms_switchable":           "false",
		"base_experience":            "63",
		"capture_rate":               "45",
		"egg_groups":                 "Monster",
		"base_happiness":             "70",
		"evolves_from":               "",
		"primary_color":              "blue",
		"number_pokemon_with_typing": "72",
	}
	for _, col := range pokedex.EffectivenessColumns {
		v[col] = "1"
	}
	return v
}

// writeTestCSV writes a CSV with the canonical header and one row per
// value map, plus any literal extra rows.
func writeTestCSV(t *testing.T, rows []map[string]string, extra ...[]string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "pokemon.csv")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(requiredColumns); err != nil {
		t.Fatal(err)
	}
	for _, vals := range rows {
		record := make([]string, len(requiredColumns))
		for i, col := range requiredColumns {
			record[i] = vals[col]
		}
		if err := w.Write(record); err != nil {
			t.Fatal(err)
		}
	}
	for _, row := range extra {
		if err := w.Write(row); err != nil {
			t.Fatal(err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRunIngestsAllRows(t *testing.T) {
	path := writeTestCSV(t, []map[string]string{
		testValues("Squirtle", "44"),
		testValues("Ho Oh", "106"),
	})

	ins := &collectingInserter{}
	report, err := Run(context.Background(), ins, path, Options{SkipFailedFile: true})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if report.TotalRows != 2 || report.Inserted != 2 || len(report.Failed) != 0 {
		t.Fatalf("report = %+v, want 2 rows inserted", report)
	}
	if report.RunID == uuid.Nil {
		t.Error("no run ID assigned")
	}

	if ins.rows[0].Slug != "squirtle" || ins.rows[1].Slug != "ho-oh" {
		t.Errorf("slugs = %q, %q", ins.rows[0].Slug, ins.rows[1].Slug)
	}
	if ins.rows[0].HP != 44 {
		t.Errorf("hp = %d, want 44", ins.rows[0].HP)
	}
}

func TestRunContinuesPastBadRows(t *testing.T) {
	blankRow := make([]string, len(requiredColumns))
	path := writeTestCSV(t, []map[string]string{
		testValues("Squirtle", "44"),
		testValues("Glitchmon", "70000"), // hp outside uint16
		testValues("Mewtwo", "106"),
	}, blankRow)

	ins := &collectingInserter{}
	report, err := Run(context.Background(), ins, path, Options{SkipFailedFile: true})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if report.Inserted != 2 {
		t.Errorf("Inserted = %d, want 2", report.Inserted)
	}
	if report.Skipped != 1 {
		t.Errorf("Skipped = %d, want 1 blank row", report.Skipped)
	}
	if len(report.Failed) != 1 {
		t.Fatalf("Failed = %+v, want one entry", report.Failed)
	}
	if report.Failed[0].Line != 3 {
		t.Errorf("Failed line = %d, want 3", report.Failed[0].Line)
	}
	if !strings.Contains(report.Failed[0].Reason, "hp") {
		t.Errorf("Failed reason = %q, want mention of hp", report.Failed[0].Reason)
	}
}

func TestRunRecordsInsertFailures(t *testing.T) {
	path := writeTestCSV(t, []map[string]string{
		testValues("Squirtle", "44"),
		testValues("Mewtwo", "106"),
	})

	ins := &collectingInserter{failSlug: "mewtwo", failErr: errors.New("duplicate key")}
	report, err := Run(context.Background(), ins, path, Options{SkipFailedFile: true})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if report.Inserted != 1 || len(report.Failed) != 1 {
		t.Fatalf("report = %+v, want 1 inserted and 1 failed", report)
	}
	if !strings.Contains(report.Failed[0].Reason, "duplicate key") {
		t.Errorf("Reason = %q", report.Failed[0].Reason)
	}
}

func TestRunWritesFailedFile(t *testing.T) {
	path := writeTestCSV(t, []map[string]string{
		testValues("Glitchmon", "70000"),
	})

	ins := &collectingInserter{}
	if _, err := Run(context.Background(), ins, path, Options{}); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	out := filepath.Join(filepath.Dir(path), "pokemon - failed.csv")
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("failed-rows file not written: %v", err)
	}
	content := string(data)
	if !strings.Contains(content, "status") || !strings.Contains(content, "Glitchmon") {
		t.Errorf("unexpected failed-rows content:\n%s", content)
	}
}

func TestRunMissingColumn(t *testing.T) {
	path := filepath.Join(t.TempDir(), "short.csv")
	if err := os.WriteFile(path, []byte("name,hp\nSquirtle,44\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := Run(context.Background(), &collectingInserter{}, path, Options{})
	if err == nil || !strings.Contains(err.Error(), "missing required columns") {
		t.Fatalf("Run() error = %v, want missing-columns failure", err)
	}
}

func TestRunCancelled(t *testing.T) {
	path := writeTestCSV(t, []map[string]string{testValues("Squirtle", "44")})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Run(ctx, &collectingInserter{}, path, Options{})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Run() error = %v, want context.Canceled", err)
	}
}
