// Package outcome defines the outcome record produced by every dice-driven
// game action and the builder steps that enrich it.
//
// An outcome is created by New, then threaded through an AsyncPipe of steps.
// Each step returns an enriched copy; a roll, once attached, is never
// replaced.
package outcome

import (
	"github.com/KirkDiggler/rpg-toolkit/core"

	"github.com/KirkDiggler/rpg-pirateborg/internal/formula"
)

// EntityType is reported by Outcome.GetType
const EntityType = "outcome"

// ActionType names the game action an outcome resolves, e.g. "attack"
type ActionType string

// Result is the single classification of a test outcome
type Result string

// Results in precedence order: critical success beats fumble beats success
// beats failure.
const (
	ResultCriticalSuccess Result = "critical_success"
	ResultFumble          Result = "fumble"
	ResultSuccess         Result = "success"
	ResultFailure         Result = "failure"
)

// AutomationType tags a side effect to run once when the owning chat message
// is processed.
type AutomationType string

// Known automation types
const (
	AutomationDamage    AutomationType = "damage"
	AutomationHeal      AutomationType = "heal"
	AutomationAnimation AutomationType = "animation"
	AutomationMaxHP     AutomationType = "maxHp"
)

// ButtonType selects the chat button handler for a click
type ButtonType string

// Outcome is the record of one dice-driven action. The JSON form is what
// gets persisted in a chat message's flags.
type Outcome struct {
	ID          string     `json:"id"`
	Type        ActionType `json:"type"`
	Title       string     `json:"title,omitempty"`
	Description string     `json:"description,omitempty"`

	Roll         *formula.Roll `json:"roll,omitempty"`
	Formula      string        `json:"formula,omitempty"`
	FormulaLabel string        `json:"formulaLabel,omitempty"`

	DR                int    `json:"dr,omitempty"`
	IsSuccess         bool   `json:"isSuccess,omitempty"`
	IsFailure         bool   `json:"isFailure,omitempty"`
	IsCriticalSuccess bool   `json:"isCriticalSuccess,omitempty"`
	IsFumble          bool   `json:"isFumble,omitempty"`
	Result            Result `json:"result,omitempty"`

	DrawResults []string `json:"drawResults,omitempty"`

	Heal        int `json:"heal,omitempty"`
	TotalDamage int `json:"totalDamage,omitempty"`

	InitiatorToken string `json:"initiatorToken,omitempty"`
	TargetToken    string `json:"targetToken,omitempty"`

	Button *Button `json:"button,omitempty"`

	Automations    []AutomationType `json:"automations,omitempty"`
	AutomationDone bool             `json:"automationDone,omitempty"`

	// Props carries factory specific values, e.g. the damage formula a
	// later button click needs.
	Props map[string]any `json:"props,omitempty"`
}

// Button is a follow-up action attached to an outcome
type Button struct {
	Title string     `json:"title"`
	Data  ButtonData `json:"data"`
}

// ButtonData is what a click hands back to the chat button dispatcher.
// Outcome is the id of the outcome that owns the button.
type ButtonData struct {
	Type    ButtonType `json:"type"`
	ID      string     `json:"id"`
	Outcome string     `json:"outcome"`
}

var _ core.Entity = (*Outcome)(nil)

// GetID returns the outcome id
func (o *Outcome) GetID() string {
	return o.ID
}

// GetType returns the entity type for rpg-toolkit
func (o *Outcome) GetType() string {
	return EntityType
}

// HasAutomation reports whether t was attached
func (o *Outcome) HasAutomation(t AutomationType) bool {
	for _, a := range o.Automations {
		if a == t {
			return true
		}
	}
	return false
}

// Clone returns a copy that can be enriched without touching o.
// The roll is shared; it is never mutated after attachment.
func (o *Outcome) Clone() *Outcome {
	if o == nil {
		return nil
	}
	c := *o
	if o.Button != nil {
		button := *o.Button
		c.Button = &button
	}
	c.Automations = append([]AutomationType(nil), o.Automations...)
	c.DrawResults = append([]string(nil), o.DrawResults...)
	if o.Props != nil {
		c.Props = make(map[string]any, len(o.Props))
		for k, v := range o.Props {
			c.Props[k] = v
		}
	}
	return &c
}

// PropString reads a string prop, "" when absent
func (o *Outcome) PropString(key string) string {
	s, _ := o.Props[key].(string)
	return s
}

// PropInt reads a numeric prop. Numbers decoded from JSON arrive as float64.
func (o *Outcome) PropInt(key string) int {
	n, _ := toInt(o.Props[key])
	return n
}

// PropBool reads a boolean prop
func (o *Outcome) PropBool(key string) bool {
	b, _ := o.Props[key].(bool)
	return b
}

// FindByID returns the outcome with the given id, nil when absent
func FindByID(outcomes []*Outcome, id string) *Outcome {
	for _, o := range outcomes {
		if o != nil && o.ID == id {
			return o
		}
	}
	return nil
}

func toInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int32:
		return int(n), true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	case float32:
		return int(n), true
	default:
		return 0, false
	}
}
