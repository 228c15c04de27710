package store

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/dexapi/pokedex/internal/ident"
	"github.com/dexapi/pokedex/internal/pokedex"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
)

// ----------------------------------------------------------------------------
// Fakes
// ----------------------------------------------------------------------------

type fakeDB struct {
	execSQL  string
	execArgs []any
	execErr  error

	querySQL  string
	queryArgs []any
	row       pgx.Row
}

func (f *fakeDB) Exec(_ context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error) {
	f.execSQL = sql
	f.execArgs = args
	if f.execErr != nil {
		return pgconn.CommandTag{}, f.execErr
	}
	return pgconn.NewCommandTag("INSERT 0 1"), nil
}

func (f *fakeDB) Query(context.Context, string, ...interface{}) (pgx.Rows, error) {
	return nil, errors.New("not used in tests")
}

func (f *fakeDB) QueryRow(_ context.Context, sql string, args ...interface{}) pgx.Row {
	f.querySQL = sql
	f.queryArgs = args
	return f.row
}

type fakeRow struct {
	err  error
	scan func(dest []any)
}

func (r *fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	if r.scan != nil {
		r.scan(dest)
	}
	return nil
}

func sampleRow(t *testing.T) pokedex.Row {
	t.Helper()
	rate := float32(0.125)
	row := pokedex.Row{
		ID:             ident.New(),
		Slug:           "squirtle",
		Name:           "Squirtle",
		PokedexID:      7,
		HP:             44,
		Attack:         48,
		Defense:        65,
		SpecialAttack:  50,
		SpecialDefense: 64,
		Speed:          43,
		Height:         5,
		Weight:         90,
		Generation:     1,
		FemaleRate:     &rate,
		IsDefault:      true,
		BaseExperience: 63,
		CaptureRate:    45,
		BaseHappiness:  70,
		PrimaryColor:   "blue",
	}
	for i := range row.Effectiveness {
		row.Effectiveness[i] = 1
	}
	row.Effectiveness[1] = 0.5
	return row
}

// ----------------------------------------------------------------------------
// Insert Tests
// ----------------------------------------------------------------------------

func TestInsertBindsAllColumns(t *testing.T) {
	db := &fakeDB{}
	row := sampleRow(t)

	if err := New(db).Insert(context.Background(), row); err != nil {
		t.Fatalf("Insert() error = %v", err)
	}

	wantArgs := len(fixedColumns) + pokedex.EffectivenessCount
	if len(db.execArgs) != wantArgs {
		t.Fatalf("bound %d args, want %d", len(db.execArgs), wantArgs)
	}

	// Identifier goes over the wire as raw bytes, not text.
	idArg, ok := db.execArgs[0].([]byte)
	if !ok {
		t.Fatalf("id arg is %T, want []byte", db.execArgs[0])
	}
	if len(idArg) != 20 {
		t.Errorf("id arg is %d bytes, want 20", len(idArg))
	}

	if !strings.HasPrefix(db.execSQL, "INSERT INTO pokemon (id, slug, name") {
		t.Errorf("unexpected statement prefix: %s", db.execSQL)
	}
	if !strings.Contains(db.execSQL, "$41") {
		t.Errorf("statement is missing the final placeholder: %s", db.execSQL)
	}
	// No row value may be interpolated into the statement text.
	if strings.Contains(db.execSQL, "squirtle") {
		t.Errorf("statement contains a literal row value: %s", db.execSQL)
	}
}

func TestInsertErrorClassification(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"unique violation", &pgconn.PgError{Code: "23505"}, KindConstraint},
		{"foreign key violation", &pgconn.PgError{Code: "23503"}, KindConstraint},
		{"query cancelled", &pgconn.PgError{Code: "57014"}, KindTimeout},
		{"connection failure", &pgconn.PgError{Code: "08006"}, KindConnectivity},
		{"deadline exceeded", context.DeadlineExceeded, KindTimeout},
		{"unclassified", errors.New("boom"), KindOther},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := &fakeDB{execErr: tt.err}

			err := New(db).Insert(context.Background(), sampleRow(t))
			if err == nil {
				t.Fatal("Insert() error = nil, want *PersistError")
			}

			var pe *PersistError
			if !errors.As(err, &pe) {
				t.Fatalf("Insert() error = %v, want *PersistError", err)
			}
			if pe.Kind != tt.want {
				t.Errorf("Kind = %v, want %v", pe.Kind, tt.want)
			}
			if !errors.Is(err, tt.err) {
				t.Error("cause is not reachable through Unwrap")
			}
		})
	}
}

// ----------------------------------------------------------------------------
// FindBySlug Tests
// ----------------------------------------------------------------------------

func TestFindBySlugNotFound(t *testing.T) {
	db := &fakeDB{row: &fakeRow{err: pgx.ErrNoRows}}

	row, err := New(db).FindBySlug(context.Background(), "missingno")
	if err != nil {
		t.Fatalf("FindBySlug() error = %v, want nil for missing slug", err)
	}
	if row != nil {
		t.Errorf("FindBySlug() = %+v, want nil", row)
	}
}

func TestFindBySlugQueryError(t *testing.T) {
	db := &fakeDB{row: &fakeRow{err: &pgconn.PgError{Code: "08006"}}}

	row, err := New(db).FindBySlug(context.Background(), "squirtle")
	if row != nil {
		t.Errorf("FindBySlug() row = %+v, want nil", row)
	}

	var pe *PersistError
	if !errors.As(err, &pe) {
		t.Fatalf("FindBySlug() error = %v, want *PersistError", err)
	}
	if pe.Kind != KindConnectivity {
		t.Errorf("Kind = %v, want %v", pe.Kind, KindConnectivity)
	}
}

func TestFindBySlugScansRow(t *testing.T) {
	id := ident.New()
	db := &fakeDB{row: &fakeRow{scan: func(dest []any) {
		*(dest[0].(*[]byte)) = id.Bytes()
		*(dest[1].(*string)) = "squirtle"
		*(dest[2].(*string)) = "Squirtle"
		*(dest[3].(*uint16)) = 7
		*(dest[4].(*uint16)) = 44
		*(dest[13].(*pgtype.Float4)) = pgtype.Float4{Float32: 0.125, Valid: true}
		*(dest[15].(*bool)) = false
		*(dest[21].(*string)) = "blue"
		*(dest[23].(*float32)) = 1
		*(dest[24].(*float32)) = 0.5
	}}}

	row, err := New(db).FindBySlug(context.Background(), "squirtle")
	if err != nil {
		t.Fatalf("FindBySlug() error = %v", err)
	}
	if row == nil {
		t.Fatal("FindBySlug() = nil, want row")
	}

	if db.queryArgs[0] != "squirtle" {
		t.Errorf("bound slug = %v, want %q", db.queryArgs[0], "squirtle")
	}
	if row.ID != id {
		t.Errorf("ID = %v, want %v", row.ID, id)
	}
	if row.Name != "Squirtle" || row.HP != 44 {
		t.Errorf("row = %+v, want Squirtle with hp 44", row)
	}
	if row.LegendaryOrMythical {
		t.Error("LegendaryOrMythical = true, want false")
	}
	if row.FemaleRate == nil || *row.FemaleRate != 0.125 {
		t.Errorf("FemaleRate = %v, want 0.125", row.FemaleRate)
	}
	if row.Effectiveness[1] != 0.5 {
		t.Errorf("Effectiveness[1] = %v, want 0.5", row.Effectiveness[1])
	}

	// The stored identifier must decode from its canonical text too.
	if _, err := ident.Parse(row.ID.String()); err != nil {
		t.Errorf("canonical text of stored identifier does not decode: %v", err)
	}
}

func TestFindBySlugCorruptIdentifier(t *testing.T) {
	db := &fakeDB{row: &fakeRow{scan: func(dest []any) {
		*(dest[0].(*[]byte)) = []byte{1, 2, 3}
	}}}

	row, err := New(db).FindBySlug(context.Background(), "squirtle")
	if row != nil {
		t.Errorf("FindBySlug() row = %+v, want nil", row)
	}

	var pe *PersistError
	if !errors.As(err, &pe) {
		t.Fatalf("FindBySlug() error = %v, want *PersistError", err)
	}
	if pe.Kind != KindCorrupt {
		t.Errorf("Kind = %v, want %v", pe.Kind, KindCorrupt)
	}
	if !errors.Is(err, ident.ErrInvalidLength) {
		t.Error("corrupt identifier error does not unwrap to ErrInvalidLength")
	}
}

func TestStatementsShareColumnOrder(t *testing.T) {
	insertCols := insertSQL[strings.Index(insertSQL, "(")+1 : strings.Index(insertSQL, ")")]
	selectCols := strings.TrimSuffix(strings.TrimPrefix(findBySlugSQL, "SELECT "), " FROM pokemon WHERE slug = $1")
	if insertCols != selectCols {
		t.Errorf("insert and select column lists differ:\n  insert: %s\n  select: %s", insertCols, selectCols)
	}
}
