package dart

import "sync"

const (
	// MinCheckout and MaxCheckout bound the scores a leg can be finished
	// from with at most three darts.
	MinCheckout = 2
	MaxCheckout = 170
)

// finishPreference ranks the finishing zones for tie-breaking between
// otherwise equal combinations. The ordering is hand-ranked and not
// monotonic in double value; reordering it silently changes recommended
// checkouts.
var finishPreference = map[string]int{
	"Bull": 120,
	"D20":  115,
	"D16":  110,
	"D18":  108,
	"D12":  106,
	"D10":  104,
	"D8":   102,
	"D6":   100,
	"D4":   98,
	"D2":   96,
	"D14":  94,
	"D15":  92,
	"D17":  90,
	"D19":  88,
	"D13":  86,
	"D11":  84,
	"D9":   82,
	"D7":   80,
	"D5":   78,
	"D3":   76,
	"D1":   74,
}

// rateCombo scores a candidate finishing combination. Fewer darts dominate
// everything, then triple count, then the finisher preference, then the
// weighted zone sum (first dart counted twice).
func rateCombo(darts []Dart) int {
	triples := 0
	weighted := 0
	for i, d := range darts {
		if len(d.Label) > 0 && d.Label[0] == 'T' {
			triples++
		}
		weight := 1
		if i == 0 {
			weight = 2
		}
		weighted += d.Score * weight
	}

	finish := finishPreference[darts[len(darts)-1].Label]

	return (3-len(darts))*10000 + triples*180 + finish*5 + weighted
}

// suggestionTable lazily builds the target -> finishing-visit lookup. The
// table is computed at most once per process and read-only afterwards, so it
// is safe to share across concurrent readers.
var suggestionTable = sync.OnceValue(buildSuggestionTable)

func buildSuggestionTable() map[int][]string {
	table := make(map[int][]string, MaxCheckout-MinCheckout+1)

	for target := MinCheckout; target <= MaxCheckout; target++ {
		bestRating := -1
		var best []Dart

		// Candidates are generated shortest-first in catalog order; a
		// strictly-greater comparison keeps the first of any rating tie.
		consider := func(combo ...Dart) {
			if rating := rateCombo(combo); rating > bestRating {
				bestRating = rating
				best = append([]Dart(nil), combo...)
			}
		}

		for _, finisher := range zones.finishers {
			if finisher.Score == target {
				consider(finisher)
			}
		}
		for _, first := range zones.all {
			for _, finisher := range zones.finishers {
				if first.Score+finisher.Score == target {
					consider(first, finisher)
				}
			}
		}
		for _, first := range zones.all {
			for _, second := range zones.all {
				for _, finisher := range zones.finishers {
					if first.Score+second.Score+finisher.Score == target {
						consider(first, second, finisher)
					}
				}
			}
		}

		if best != nil {
			labels := make([]string, len(best))
			for i, d := range best {
				labels[i] = d.Label
			}
			table[target] = labels
		}
	}

	return table
}

// Suggest returns the recommended finishing visit for target as an ordered
// label sequence. The second return is false for targets outside
// [MinCheckout, MaxCheckout] and for bogey numbers (169, 168, 166, 165, 163,
// 162, 159), which have no double-out finish within three darts.
func Suggest(target int) ([]string, bool) {
	if target < MinCheckout || target > MaxCheckout {
		return nil, false
	}

	labels, ok := suggestionTable()[target]
	if !ok {
		return nil, false
	}

	out := make([]string, len(labels))
	copy(out, labels)
	return out, true
}
