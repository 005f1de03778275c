package formula

import (
	"fmt"
	"strings"
)

// Roll is the result of evaluating a dice formula
type Roll struct {
	// Formula is the source text as given to the evaluator
	Formula string `json:"formula"`

	// Total is the evaluated result, rounded half away from zero
	Total int `json:"total"`

	// Dice holds one entry per dice term in left-to-right order
	Dice []DieTerm `json:"dice,omitempty"`
}

// DieTerm records the faces rolled for one NdM term
type DieTerm struct {
	Count   int   `json:"count"`
	Faces   int   `json:"faces"`
	Results []int `json:"results"`

	// Kept are the results that count toward the total, in roll order.
	// Without a keep modifier it equals Results.
	Kept []int `json:"kept"`

	Total int `json:"total"`
}

// PrimaryDie returns the first kept face of the first dice term, the value
// fumble and critical classification look at. Zero when the formula rolled
// no dice.
func (r *Roll) PrimaryDie() int {
	if r == nil || len(r.Dice) == 0 || len(r.Dice[0].Kept) == 0 {
		return 0
	}
	return r.Dice[0].Kept[0]
}

// Faces returns every kept face across all terms
func (r *Roll) Faces() []int {
	if r == nil {
		return nil
	}
	var faces []int
	for _, term := range r.Dice {
		faces = append(faces, term.Kept...)
	}
	return faces
}

// String renders the roll as "d20+3 [17] = 20"
func (r *Roll) String() string {
	if r == nil {
		return ""
	}
	if len(r.Dice) == 0 {
		return fmt.Sprintf("%s = %d", r.Formula, r.Total)
	}
	parts := make([]string, len(r.Dice))
	for i, term := range r.Dice {
		parts[i] = strings.Trim(fmt.Sprint(term.Kept), "[]")
	}
	return fmt.Sprintf("%s [%s] = %d", r.Formula, strings.Join(parts, "; "), r.Total)
}
