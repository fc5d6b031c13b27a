// Package league derives a league label from a running token balance.
package league

// League is the label a balance maps to.
type League string

const (
	Bronze  League = "Bronze"
	Silver  League = "Silver"
	Gold    League = "Gold"
	Diamond League = "Diamond"
)

// threshold opens a league at MinTokens and keeps it until the next threshold.
type threshold struct {
	MinTokens int64
	League    League
}

// thresholds must stay in ascending order. Classification walks them from the
// top so the first match wins; a balance equal to a threshold belongs to the
// league that threshold opens.
var thresholds = []threshold{
	{MinTokens: 0, League: Bronze},
	{MinTokens: 10, League: Silver},
	{MinTokens: 25, League: Gold},
	{MinTokens: 50, League: Diamond},
}

// Classify maps a balance to its league. Balances below the first threshold
// (possible when negative adjustments are applied) fall back to the lowest
// league.
func Classify(balance int64) League {
	for i := len(thresholds) - 1; i >= 0; i-- {
		if balance >= thresholds[i].MinTokens {
			return thresholds[i].League
		}
	}
	return thresholds[0].League
}

// Rank returns the position of a league in ascending order, -1 for unknown
// labels. Useful for asserting ordering without comparing strings.
func Rank(l League) int {
	for i, t := range thresholds {
		if t.League == l {
			return i
		}
	}
	return -1
}
