// Package pokedex holds the domain model for per-species statistics and
// the pure transform that turns a loosely-typed CSV record into a fully
// typed storage row.
package pokedex

import "github.com/dexapi/pokedex/internal/ident"

// EffectivenessCount is the number of per-damage-type attack
// effectiveness multipliers carried by every row.
const EffectivenessCount = 18

// EffectivenessColumns fixes the canonical order of the effectiveness
// block. Storage reads and writes must bind the values in exactly this
// order so the block round-trips without reordering.
var EffectivenessColumns = [EffectivenessCount]string{
	"normal_attack_effectiveness",
	"fire_attack_effectiveness",
	"water_attack_effectiveness",
	"electric_attack_effectiveness",
	"grass_attack_effectiveness",
	"ice_attack_effectiveness",
	"fighting_attack_effectiveness",
	"poison_attack_effectiveness",
	"ground_attack_effectiveness",
	"fly_attack_effectiveness",
	"psychic_attack_effectiveness",
	"bug_attack_effectiveness",
	"rock_attack_effectiveness",
	"ghost_attack_effectiveness",
	"dragon_attack_effectiveness",
	"dark_attack_effectiveness",
	"steel_attack_effectiveness",
	"fairy_attack_effectiveness",
}

// RawRecord is one record from the external CSV source, still in string
// form. It is consumed exactly once by Transform.
//
// Abilities, Typing, EggGroups and EvolvesFrom are read from the source
// but not persisted; they are kept on the struct so a future schema
// change can pick them up without touching the parser.
type RawRecord struct {
	Name                string
	PokedexID           string
	Abilities           string
	Typing              string
	HP                  string
	Attack              string
	Defense             string
	SpecialAttack       string
	SpecialDefense      string
	Speed               string
	Height              string
	Weight              string
	Generation          string
	FemaleRate          string
	Genderless          string
	LegendaryOrMythical string
	IsDefault           string
	FormsSwitchable     string
	BaseExperience      string
	CaptureRate         string
	EggGroups           string
	BaseHappiness       string
	EvolvesFrom         string
	PrimaryColor        string
	NumberWithTyping    string
	Effectiveness       [EffectivenessCount]string
}

// Row is the fully typed, persistable record for one species. The slug is
// a deterministic function of Name, computed once at transform time and
// trusted as-is at read time. The identifier is assigned at transform
// time and immutable afterwards.
type Row struct {
	ID                  ident.ID `json:"id"`
	Slug                string   `json:"slug"`
	Name                string   `json:"name"`
	PokedexID           uint16   `json:"pokedexId"`
	HP                  uint16   `json:"hp"`
	Attack              uint16   `json:"attack"`
	Defense             uint16   `json:"defense"`
	SpecialAttack       uint16   `json:"specialAttack"`
	SpecialDefense      uint16   `json:"specialDefense"`
	Speed               uint16   `json:"speed"`
	Height              uint16   `json:"height"`
	Weight              uint16   `json:"weight"`
	Generation          uint16   `json:"generation"`
	FemaleRate          *float32 `json:"femaleRate"`
	Genderless          bool     `json:"genderless"`
	LegendaryOrMythical bool     `json:"legendaryOrMythical"`
	IsDefault           bool     `json:"isDefault"`
	FormsSwitchable     bool     `json:"formsSwitchable"`
	BaseExperience      uint16   `json:"baseExperience"`
	CaptureRate         uint16   `json:"captureRate"`
	BaseHappiness       uint16   `json:"baseHappiness"`
	PrimaryColor        string   `json:"primaryColor"`
	NumberWithTyping    float32  `json:"numberPokemonWithTyping"`

	// Effectiveness holds the attack effectiveness multipliers in the
	// order fixed by EffectivenessColumns.
	Effectiveness [EffectivenessCount]float32 `json:"-"`
}

// EffectivenessByType returns the effectiveness block keyed by column
// name, for structured output.
func (r *Row) EffectivenessByType() map[string]float32 {
	m := make(map[string]float32, EffectivenessCount)
	for i, col := range EffectivenessColumns {
		m[col] = r.Effectiveness[i]
	}
	return m
}
