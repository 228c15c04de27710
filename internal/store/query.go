package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dexapi/pokedex/internal/ident"
	"github.com/dexapi/pokedex/internal/pokedex"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

var findBySlugSQL = buildFindBySlugSQL()

func buildFindBySlugSQL() string {
	cols := make([]string, 0, len(fixedColumns)+pokedex.EffectivenessCount)
	cols = append(cols, fixedColumns...)
	cols = append(cols, pokedex.EffectivenessColumns[:]...)
	return "SELECT " + strings.Join(cols, ", ") + " FROM pokemon WHERE slug = $1"
}

// FindBySlug returns the row for a slug, or (nil, nil) when no row
// exists. "Not found" is an empty result, never an error; a query failure
// or a corrupted identifier column is a *PersistError.
//
// The slug is trusted as stored and is not re-derived or re-validated
// here.
func (s *Store) FindBySlug(ctx context.Context, slug string) (*pokedex.Row, error) {
	var (
		row        pokedex.Row
		idBytes    []byte
		femaleRate pgtype.Float4
	)

	dest := make([]any, 0, len(fixedColumns)+pokedex.EffectivenessCount)
	dest = append(dest,
		&idBytes,
		&row.Slug,
		&row.Name,
		&row.PokedexID,
		&row.HP,
		&row.Attack,
		&row.Defense,
		&row.SpecialAttack,
		&row.SpecialDefense,
		&row.Speed,
		&row.Height,
		&row.Weight,
		&row.Generation,
		&femaleRate,
		&row.Genderless,
		&row.LegendaryOrMythical,
		&row.IsDefault,
		&row.FormsSwitchable,
		&row.BaseExperience,
		&row.CaptureRate,
		&row.BaseHappiness,
		&row.PrimaryColor,
		&row.NumberWithTyping,
	)
	for i := range row.Effectiveness {
		dest = append(dest, &row.Effectiveness[i])
	}

	err := s.db.QueryRow(ctx, findBySlugSQL, slug).Scan(dest...)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, wrapPersist("find pokemon by slug", err)
	}

	// An identifier column of the wrong width means the stored data is
	// corrupt, which is an error, unlike a missing slug.
	id, err := ident.FromBytes(idBytes)
	if err != nil {
		return nil, &PersistError{
			Op:   "find pokemon by slug",
			Kind: KindCorrupt,
			Err:  fmt.Errorf("stored identifier for slug %q: %w", slug, err),
		}
	}
	row.ID = id

	if femaleRate.Valid {
		v := femaleRate.Float32
		row.FemaleRate = &v
	}

	return &row, nil
}
