package dart

import "fmt"

// Dart is one scoring zone on the board.
type Dart struct {
	Label    string
	Score    int
	IsDouble bool
}

// board holds the fixed zone catalogs. Built once at package init and never
// mutated afterwards; the order of all is the candidate generation order the
// checkout table depends on.
type board struct {
	all       []Dart
	finishers []Dart
}

var zones = buildBoard()

func buildBoard() board {
	singles := make([]Dart, 0, 20)
	doubles := make([]Dart, 0, 20)
	triples := make([]Dart, 0, 20)

	for value := 1; value <= 20; value++ {
		singles = append(singles, Dart{Label: fmt.Sprintf("%d", value), Score: value})
		doubles = append(doubles, Dart{Label: fmt.Sprintf("D%d", value), Score: value * 2, IsDouble: true})
		triples = append(triples, Dart{Label: fmt.Sprintf("T%d", value), Score: value * 3})
	}

	outerBull := Dart{Label: "SBull", Score: 25}
	bull := Dart{Label: "Bull", Score: 50, IsDouble: true}

	all := make([]Dart, 0, 62)
	all = append(all, triples...)
	all = append(all, doubles...)
	all = append(all, singles...)
	all = append(all, outerBull, bull)

	finishers := make([]Dart, 0, 21)
	finishers = append(finishers, doubles...)
	finishers = append(finishers, bull)

	return board{all: all, finishers: finishers}
}

// Catalog returns every scoring zone: triples, doubles, singles, outer bull,
// bull.
func Catalog() []Dart {
	out := make([]Dart, len(zones.all))
	copy(out, zones.all)
	return out
}

// Finishers returns the zones that may end a double-out leg: the twenty
// doubles and the bull.
func Finishers() []Dart {
	out := make([]Dart, len(zones.finishers))
	copy(out, zones.finishers)
	return out
}
