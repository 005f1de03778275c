package chatlog

import (
	"html/template"
	"strconv"
	"strings"

	"github.com/KirkDiggler/rpg-pirateborg/internal/outcome"
)

var outcomeTemplate = template.Must(template.New("outcome").Funcs(template.FuncMap{
	"faces":       faces,
	"resultLabel": resultLabel,
}).Parse(`<div class="pirateborg outcome outcome-{{.Type}}" data-outcome-id="{{.ID}}">
{{- if .Title}}<h3 class="outcome-title">{{.Title}}</h3>{{end}}
{{- if .Roll}}<div class="dice-roll"><span class="dice-formula">{{.FormulaLabel}}</span><span class="dice-faces">{{faces .}}</span><span class="dice-total">{{.Roll.Total}}</span></div>{{end}}
{{- if .DR}}<div class="outcome-dr">DR {{.DR}}</div>{{end}}
{{- if .Result}}<div class="outcome-result result-{{.Result}}">{{resultLabel .Result}}</div>{{end}}
{{- if .DrawResults}}<ul class="draw-results">{{range .DrawResults}}<li>{{.}}</li>{{end}}</ul>{{else if .Description}}<p class="outcome-description">{{.Description}}</p>{{end}}
{{- if .Button}}<button class="outcome-button" data-type="{{.Button.Data.Type}}" data-id="{{.Button.Data.ID}}" data-outcome="{{.Button.Data.Outcome}}">{{.Button.Title}}</button>{{end}}
</div>`))

// buttonOutcomeTemplate escapes data-outcome the same way outcomeTemplate does
var buttonOutcomeTemplate = template.Must(template.New("buttonOutcome").Parse(`<button data-outcome="{{.}}">`))

// outcomeAttr renders the data-outcome attribute of the button bound to
// outcomeID, as it appears in rendered content
func outcomeAttr(outcomeID string) (string, error) {
	var b strings.Builder
	if err := buttonOutcomeTemplate.Execute(&b, outcomeID); err != nil {
		return "", err
	}
	attr := strings.TrimPrefix(b.String(), "<button ")
	return strings.TrimSuffix(attr, ">"), nil
}

func faces(o *outcome.Outcome) string {
	if o.Roll == nil {
		return ""
	}
	parts := make([]string, 0, len(o.Roll.Dice))
	for _, term := range o.Roll.Dice {
		nums := make([]string, 0, len(term.Results))
		for _, f := range term.Results {
			nums = append(nums, strconv.Itoa(f))
		}
		parts = append(parts, strings.Join(nums, " "))
	}
	return strings.Join(parts, "; ")
}

func resultLabel(r outcome.Result) string {
	switch r {
	case outcome.ResultCriticalSuccess:
		return "Critical Success"
	case outcome.ResultFumble:
		return "Fumble"
	case outcome.ResultSuccess:
		return "Success"
	case outcome.ResultFailure:
		return "Failure"
	default:
		return string(r)
	}
}
