package budget

import "math"

// Allocation is a suggested spend for one category.
type Allocation struct {
	Category string  `json:"category"`
	Percent  int     `json:"percent"`
	Amount   float64 `json:"amount"`
}

// typicalShares is the usual split of a wedding budget, largest first. Sums to 100.
var typicalShares = []struct {
	category string
	percent  int
}{
	{"venue", 40},
	{"catering", 20},
	{"photography", 10},
	{"attire", 7},
	{"flowers", 6},
	{"music", 5},
	{"decor", 3},
	{"stationery", 2},
	{"beauty", 2},
	{"rings", 2},
	{"transportation", 2},
	{"favors", 1},
}

// SuggestAllocation splits total across categories by typical shares. The
// amounts sum to total exactly, in cents: the rounding remainder goes to the
// largest category. Totals outside (0, MaxAmount] get no suggestions.
func SuggestAllocation(total float64) []Allocation {
	if total <= 0 || total > MaxAmount || math.IsNaN(total) {
		return []Allocation{}
	}

	cents := int64(math.Round(total * 100))
	amounts := make([]int64, len(typicalShares))
	var assigned int64
	for i, share := range typicalShares {
		amounts[i] = cents * int64(share.percent) / 100
		assigned += amounts[i]
	}
	amounts[0] += cents - assigned

	out := make([]Allocation, len(typicalShares))
	for i, share := range typicalShares {
		out[i] = Allocation{
			Category: share.category,
			Percent:  share.percent,
			Amount:   float64(amounts[i]) / 100,
		}
	}
	return out
}
