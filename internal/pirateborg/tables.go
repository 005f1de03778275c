package pirateborg

// Text tables. Entries are indexed by die face minus one.

var brokenTable = []string{
	"You fall unconscious for d4 rounds and awaken with d4 HP.",
	"Roll a d6: 1-5 a broken or severed limb, 6 a lost eye. Either way you are out of the fight with d4 HP.",
	"Roll a d2: 1 a haemorrhage, you die in d2 hours unless treated. 2 a gaping wound, d4 HP and -1 to all tests until healed.",
	"You are dead.",
}

var mishapTable = []string{
	"Your skin blisters and weeps. Take d4 damage.",
	"The spirits mock you. You cannot invoke anything until you rest.",
	"Your shadow detaches and flees. -2 Presence until dawn.",
	"Salt water pours from your mouth. You are stunned for one round.",
	"A nearby ally is struck instead. They take d6 damage.",
	"The sea remembers you. The next storm seeks you out.",
}

// reactionTable is indexed by the 2d6 total bands below
var reactionTable = []struct {
	max  int
	text string
}{
	{max: 3, text: "Kill!"},
	{max: 6, text: "Angered"},
	{max: 8, text: "Indifferent"},
	{max: 10, text: "Almost friendly"},
	{max: 12, text: "Helpful"},
}

// reaction returns the reaction text for a 2d6 total
func reaction(total int) string {
	for _, band := range reactionTable {
		if total <= band.max {
			return band.text
		}
	}
	return reactionTable[len(reactionTable)-1].text
}

// tableEntry returns the entry for a 1-based face, clamped to the table
func tableEntry(table []string, face int) string {
	switch {
	case face < 1:
		face = 1
	case face > len(table):
		face = len(table)
	}
	return table[face-1]
}

// Fixed texts used by roll actions
const (
	textMoraleHolds     = "They hold their ground"
	textFlees           = "Flees"
	textSurrenders      = "Surrenders"
	textCrewHolds       = "The crew stands fast"
	textCrewDeserts     = "The crew abandons ship"
	textCrewMutinies    = "The crew mutinies"
	textEnemiesFirst    = "Enemies act first"
	textPartyFirst      = "The party acts first"
	textStarving        = "You are starving and do not heal"
	textGetBetter       = "Your maximum HP increases"
	textNoBetter        = "Your maximum HP stays the same"
	textRestShort       = "Short rest"
	textRestLong        = "Long rest"
	partyInitiativeHigh = 4
	moraleFleeMax       = 3
)
