package store

import (
	"context"
	"strings"

	"github.com/dexapi/pokedex/internal/pokedex"
	"github.com/jackc/pgx/v5/pgtype"
)

// fixedColumns are the columns preceding the effectiveness block, in
// insert order. The effectiveness columns follow in the order fixed by
// pokedex.EffectivenessColumns.
var fixedColumns = []string{
	"id",
	"slug",
	"name",
	"pokedex_id",
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
	"legendary_or_mythical",
	"is_default",
	"forms_switchable",
	"base_experience",
	"capture_rate",
	"base_happiness",
	"primary_color",
	"number_pokemon_with_typing",
}

// insertSQL is built once at init; all values are bound as parameters so
// nothing row-derived is ever interpolated into the statement.
var insertSQL = buildInsertSQL()

func buildInsertSQL() string {
	cols := make([]string, 0, len(fixedColumns)+pokedex.EffectivenessCount)
	cols = append(cols, fixedColumns...)
	cols = append(cols, pokedex.EffectivenessColumns[:]...)

	var b strings.Builder
	b.WriteString("INSERT INTO pokemon (")
	b.WriteString(strings.Join(cols, ", "))
	b.WriteString(") VALUES (")
	for i := range cols {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteByte('$')
		b.WriteString(itoa(i + 1))
	}
	b.WriteString(")")
	return b.String()
}

// Insert persists one row with a single statement. Failures come back as
// a *PersistError wrapping the cause; a duplicate slug or identifier
// surfaces as KindConstraint.
func (s *Store) Insert(ctx context.Context, row pokedex.Row) error {
	_, err := s.db.Exec(ctx, insertSQL, insertArgs(row)...)
	if err != nil {
		return wrapPersist("insert pokemon", err)
	}
	return nil
}

// insertArgs binds the row in the exact column order of insertSQL. The
// identifier is bound as its raw 20-byte form, never as text.
func insertArgs(row pokedex.Row) []any {
	femaleRate := pgtype.Float4{}
	if row.FemaleRate != nil {
		femaleRate = pgtype.Float4{Float32: *row.FemaleRate, Valid: true}
	}

	args := make([]any, 0, len(fixedColumns)+pokedex.EffectivenessCount)
	args = append(args,
		row.ID.Bytes(),
		row.Slug,
		row.Name,
		int32(row.PokedexID),
		int32(row.HP),
		int32(row.Attack),
		int32(row.Defense),
		int32(row.SpecialAttack),
		int32(row.SpecialDefense),
		int32(row.Speed),
		int32(row.Height),
		int32(row.Weight),
		int32(row.Generation),
		femaleRate,
		row.Genderless,
		row.LegendaryOrMythical,
		row.IsDefault,
		row.FormsSwitchable,
		int32(row.BaseExperience),
		int32(row.CaptureRate),
		int32(row.BaseHappiness),
		row.PrimaryColor,
		row.NumberWithTyping,
	)
	for _, v := range row.Effectiveness {
		args = append(args, v)
	}
	return args
}

func itoa(i int) string {
	if i == 0 {
		return "0"
	}
	var b [4]byte
	n := len(b)
	for i > 0 {
		n--
		b[n] = byte('0' + i%10)
		i /= 10
	}
	return string(b[n:])
}
