package pokedex

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dexapi/pokedex/internal/ident"
)

// CoercionError reports a raw field that could not be narrowed into its
// storage type. It aborts the transform for that record only; batch
// callers record it and continue with the remaining records.
type CoercionError struct {
	Field  string
	Value  string
	Target string
}

func (e *CoercionError) Error() string {
	return fmt.Sprintf("field %q: value %q does not fit %s", e.Field, e.Value, e.Target)
}

// Transform converts a raw CSV record into a storage row. It assigns a
// fresh identifier, derives the slug from the display name, and narrows
// every numeric field to its declared width. A value outside the target
// range fails with a *CoercionError rather than wrapping silently.
//
// Aside from identifier generation (time and randomness), Transform is
// pure: no I/O, no shared state. Fields the schema does not persist
// (abilities, typing, egg groups, evolves-from) are ignored.
func Transform(raw RawRecord) (Row, error) {
	row := Row{
		ID:           ident.New(),
		Slug:         Slugify(raw.Name),
		Name:         raw.Name,
		PrimaryColor: strings.TrimSpace(raw.PrimaryColor),
	}

	for _, f := range []struct {
		name string
		raw  string
		dst  *uint16
	}{
		{"pokedex_id", raw.PokedexID, &row.PokedexID},
		{"hp", raw.HP, &row.HP},
		{"attack", raw.Attack, &row.Attack},
		{"defense", raw.Defense, &row.Defense},
		{"special_attack", raw.SpecialAttack, &row.SpecialAttack},
		{"special_defense", raw.SpecialDefense, &row.SpecialDefense},
		{"speed", raw.Speed, &row.Speed},
		{"height", raw.Height, &row.Height},
		{"weight", raw.Weight, &row.Weight},
		{"generation", raw.Generation, &row.Generation},
		{"base_experience", raw.BaseExperience, &row.BaseExperience},
		{"capture_rate", raw.CaptureRate, &row.CaptureRate},
		{"base_happiness", raw.BaseHappiness, &row.BaseHappiness},
	} {
		v, err := coerceUint16(f.name, f.raw)
		if err != nil {
			return Row{}, err
		}
		*f.dst = v
	}

	for _, f := range []struct {
		name string
		raw  string
		dst  *bool
	}{
		{"genderless", raw.Genderless, &row.Genderless},
		{"is_legendary_or_mythical", raw.LegendaryOrMythical, &row.LegendaryOrMythical},
		{"is_default", raw.IsDefault, &row.IsDefault},
		{"forms_switchable", raw.FormsSwitchable, &row.FormsSwitchable},
	} {
		v, err := coerceBool(f.name, f.raw)
		if err != nil {
			return Row{}, err
		}
		*f.dst = v
	}

	// female_rate is absent for genderless species; empty stays NULL.
	if s := strings.TrimSpace(raw.FemaleRate); s != "" {
		v, err := coerceFloat32("female_rate", s)
		if err != nil {
			return Row{}, err
		}
		row.FemaleRate = &v
	}

	typing, err := coerceFloat32("number_pokemon_with_typing", raw.NumberWithTyping)
	if err != nil {
		return Row{}, err
	}
	row.NumberWithTyping = typing

	for i, s := range raw.Effectiveness {
		v, err := coerceFloat32(EffectivenessColumns[i], s)
		if err != nil {
			return Row{}, err
		}
		row.Effectiveness[i] = v
	}

	return row, nil
}

// coerceUint16 narrows a raw numeric string to 16 bits. Both unparseable
// input and values outside 0..65535 are coercion failures.
func coerceUint16(field, raw string) (uint16, error) {
	n, err := strconv.ParseUint(strings.TrimSpace(raw), 10, 16)
	if err != nil {
		return 0, &CoercionError{Field: field, Value: raw, Target: "uint16"}
	}
	return uint16(n), nil
}

func coerceFloat32(field, raw string) (float32, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(raw), 32)
	if err != nil {
		return 0, &CoercionError{Field: field, Value: raw, Target: "float32"}
	}
	return float32(f), nil
}

// coerceBool accepts the representations seen in exported spreadsheets:
// true/false, t/f, yes/no, y/n, 1/0 (case-insensitive).
func coerceBool(field, raw string) (bool, error) {
	switch strings.TrimSpace(strings.ToLower(raw)) {
	case "true", "t", "yes", "y", "1":
		return true, nil
	case "false", "f", "no", "n", "0":
		return false, nil
	default:
		return false, &CoercionError{Field: field, Value: raw, Target: "bool"}
	}
}
