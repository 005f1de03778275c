package entities

import (
	"github.com/KirkDiggler/rpg-toolkit/core"
)

// ActorKind separates the sheets an actor can have
type ActorKind string

// Actor kinds
const (
	ActorKindCharacter ActorKind = "character"
	ActorKindCreature  ActorKind = "creature"
	ActorKindShip      ActorKind = "ship"
)

// Ability names used in roll data paths such as @abilities.agility.value
const (
	AbilityStrength  = "strength"
	AbilityAgility   = "agility"
	AbilityPresence  = "presence"
	AbilityToughness = "toughness"
	AbilitySpirit    = "spirit"
)

// Actor is anything that rolls dice or takes damage: a pirate, a creature or
// a ship. It is loaded from the roster and mutated only through the actor
// repository.
type Actor struct {
	ID      string    `yaml:"id" json:"id"`
	Name    string    `yaml:"name" json:"name"`
	Kind    ActorKind `yaml:"kind" json:"kind"`
	TokenID string    `yaml:"token" json:"token,omitempty"`

	HP        HitPoints `yaml:"hp" json:"hp"`
	Abilities Abilities `yaml:"abilities" json:"abilities"`
	Armor     *Armor    `yaml:"armor,omitempty" json:"armor,omitempty"`
	Weapons   []Weapon  `yaml:"weapons,omitempty" json:"weapons,omitempty"`

	// Morale is the creature morale score tested with 2d6
	Morale int `yaml:"morale,omitempty" json:"morale,omitempty"`

	// Starving characters do not heal on rest
	Starving bool `yaml:"starving,omitempty" json:"starving,omitempty"`

	Ship *ShipStats `yaml:"ship,omitempty" json:"ship,omitempty"`
}

// HitPoints is a current/max pair. Ships use it for hull.
type HitPoints struct {
	Value int `yaml:"value" json:"value"`
	Max   int `yaml:"max" json:"max"`
}

// Abilities holds the five ability modifiers
type Abilities struct {
	Strength  int `yaml:"strength" json:"strength"`
	Agility   int `yaml:"agility" json:"agility"`
	Presence  int `yaml:"presence" json:"presence"`
	Toughness int `yaml:"toughness" json:"toughness"`
	Spirit    int `yaml:"spirit" json:"spirit"`
}

// Armor reduces incoming damage by rolling its tier die
type Armor struct {
	Name string `yaml:"name" json:"name"`
	Tier int    `yaml:"tier" json:"tier"`
}

// Weapon carries the damage formula rolled after a hit
type Weapon struct {
	ID     string `yaml:"id" json:"id"`
	Name   string `yaml:"name" json:"name"`
	Damage string `yaml:"damage" json:"damage"`
	Ranged bool   `yaml:"ranged,omitempty" json:"ranged,omitempty"`
}

// ShipStats is the sheet of a ship actor
type ShipStats struct {
	Agility int `yaml:"agility" json:"agility"`
	Skill   int `yaml:"skill" json:"skill"`
	// Damage is the broadside damage formula
	Damage string `yaml:"damage" json:"damage"`
	// Ram is the ramming damage formula
	Ram        string `yaml:"ram" json:"ram"`
	CrewMorale int    `yaml:"crewMorale" json:"crewMorale"`
}

var _ core.Entity = (*Actor)(nil)

// GetID returns the actor id
func (a *Actor) GetID() string {
	return a.ID
}

// GetType returns the actor kind for rpg-toolkit
func (a *Actor) GetType() string {
	return string(a.Kind)
}

// Ability returns the named ability modifier, 0 when unknown
func (a *Actor) Ability(name string) int {
	switch name {
	case AbilityStrength:
		return a.Abilities.Strength
	case AbilityAgility:
		return a.Abilities.Agility
	case AbilityPresence:
		return a.Abilities.Presence
	case AbilityToughness:
		return a.Abilities.Toughness
	case AbilitySpirit:
		return a.Abilities.Spirit
	default:
		return 0
	}
}

// Weapon returns the weapon with the given id, nil when the actor has none
func (a *Actor) Weapon(id string) *Weapon {
	for i := range a.Weapons {
		if a.Weapons[i].ID == id {
			return &a.Weapons[i]
		}
	}
	return nil
}

// ArmorTier returns the worn armor tier, 0 when unarmored
func (a *Actor) ArmorTier() int {
	if a.Armor == nil {
		return 0
	}
	return a.Armor.Tier
}

// RollData is the variable bag formulas are evaluated against
func (a *Actor) RollData() map[string]any {
	abilities := map[string]any{}
	for _, name := range []string{AbilityStrength, AbilityAgility, AbilityPresence, AbilityToughness, AbilitySpirit} {
		abilities[name] = map[string]any{"value": a.Ability(name)}
	}

	data := map[string]any{
		"abilities": abilities,
		"hp":        map[string]any{"value": a.HP.Value, "max": a.HP.Max},
		"armor":     map[string]any{"tier": a.ArmorTier()},
		"morale":    a.Morale,
	}
	if a.Ship != nil {
		data["ship"] = map[string]any{
			"agility":    map[string]any{"value": a.Ship.Agility},
			"skill":      map[string]any{"value": a.Ship.Skill},
			"hull":       map[string]any{"value": a.HP.Value, "max": a.HP.Max},
			"crewMorale": a.Ship.CrewMorale,
		}
	}
	return data
}

// Clone returns a deep copy
func (a *Actor) Clone() *Actor {
	if a == nil {
		return nil
	}
	c := *a
	if a.Armor != nil {
		armor := *a.Armor
		c.Armor = &armor
	}
	if a.Ship != nil {
		ship := *a.Ship
		c.Ship = &ship
	}
	c.Weapons = append([]Weapon(nil), a.Weapons...)
	return &c
}

// ActiveToken returns the token the actor is represented by on the scene
func (a *Actor) ActiveToken() string {
	if a == nil {
		return ""
	}
	return a.TokenID
}
