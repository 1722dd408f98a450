package tournament

import (
	"fmt"
	"testing"
)

func TestRoundRobinRoundsEvenField(t *testing.T) {
	t.Parallel()

	players := []string{"a", "b", "c", "d"}
	rounds := RoundRobinRounds(players)

	if len(rounds) != 3 {
		t.Fatalf("unexpected round count: got=%d want=3", len(rounds))
	}
	for _, round := range rounds {
		if len(round.Pairs) != 2 {
			t.Fatalf("round %d: unexpected pair count: got=%d want=2", round.Round, len(round.Pairs))
		}
	}
}

func TestRoundRobinRoundsOddFieldSitOuts(t *testing.T) {
	t.Parallel()

	players := []string{"a", "b", "c", "d", "e"}
	rounds := RoundRobinRounds(players)

	// N odd means a bye slot joins, so there are N rounds and one player
	// sits out each round.
	if len(rounds) != 5 {
		t.Fatalf("unexpected round count: got=%d want=5", len(rounds))
	}
	for _, round := range rounds {
		if len(round.Pairs) != 2 {
			t.Fatalf("round %d: unexpected pair count: got=%d want=2", round.Round, len(round.Pairs))
		}
	}
}

func TestRoundRobinRoundsEachPairOnce(t *testing.T) {
	t.Parallel()

	for _, size := range []int{2, 3, 4, 5, 6, 7, 8, 9, 12} {
		size := size
		t.Run(fmt.Sprintf("size-%d", size), func(t *testing.T) {
			t.Parallel()

			players := make([]string, size)
			for i := range players {
				players[i] = fmt.Sprintf("p%d", i)
			}

			seen := map[string]int{}
			for _, round := range RoundRobinRounds(players) {
				inRound := map[string]bool{}
				for _, pair := range round.Pairs {
					if pair[0] == pair[1] {
						t.Fatalf("round %d pairs %q with itself", round.Round, pair[0])
					}
					if inRound[pair[0]] || inRound[pair[1]] {
						t.Fatalf("round %d schedules a player twice: %v", round.Round, pair)
					}
					inRound[pair[0]] = true
					inRound[pair[1]] = true

					key := pair[0] + "|" + pair[1]
					if pair[1] < pair[0] {
						key = pair[1] + "|" + pair[0]
					}
					seen[key]++
				}
			}

			wantPairs := size * (size - 1) / 2
			if len(seen) != wantPairs {
				t.Fatalf("unexpected distinct pairings: got=%d want=%d", len(seen), wantPairs)
			}
			for key, count := range seen {
				if count != 1 {
					t.Fatalf("pairing %s scheduled %d times", key, count)
				}
			}
		})
	}
}

func TestRoundRobinRoundsSmallFields(t *testing.T) {
	t.Parallel()

	if got := RoundRobinRounds(nil); got != nil {
		t.Fatalf("expected no rounds for empty field, got %v", got)
	}

	rounds := RoundRobinRounds([]string{"solo"})
	for _, round := range rounds {
		if len(round.Pairs) != 0 {
			t.Fatalf("single player should never be paired, got %v", round.Pairs)
		}
	}
}

func TestDistributeGroups(t *testing.T) {
	t.Parallel()

	players := []string{"a", "b", "c", "d", "e", "f", "g"}
	groups := DistributeGroups(players, 2)

	if len(groups) != 2 {
		t.Fatalf("unexpected group count: got=%d want=2", len(groups))
	}
	wantFirst := []string{"a", "c", "e", "g"}
	wantSecond := []string{"b", "d", "f"}
	if fmt.Sprint(groups[0]) != fmt.Sprint(wantFirst) {
		t.Fatalf("group 0: got=%v want=%v", groups[0], wantFirst)
	}
	if fmt.Sprint(groups[1]) != fmt.Sprint(wantSecond) {
		t.Fatalf("group 1: got=%v want=%v", groups[1], wantSecond)
	}

	single := DistributeGroups(players, 0)
	if len(single) != 1 || len(single[0]) != len(players) {
		t.Fatalf("group count below 1 should collapse to one group, got %v", single)
	}
}

func TestKnockoutSeedPairsFiveSeeds(t *testing.T) {
	t.Parallel()

	pairs := KnockoutSeedPairs([]string{"s1", "s2", "s3", "s4", "s5"})

	// Bracket of 8: top seeds draw the padded byes.
	if len(pairs) != 4 {
		t.Fatalf("unexpected pair count: got=%d want=4", len(pairs))
	}

	byes := 0
	for _, pair := range pairs {
		if pair.B == "" {
			byes++
		}
	}
	if byes != 3 {
		t.Fatalf("unexpected bye count: got=%d want=3", byes)
	}

	if pairs[0].A != "s1" || pairs[0].B != "" {
		t.Fatalf("seed 1 should meet the last bracket slot: got=%+v", pairs[0])
	}
	if pairs[3].A != "s4" || pairs[3].B != "s5" {
		t.Fatalf("seeds 4 and 5 should meet: got=%+v", pairs[3])
	}
}

func TestKnockoutSeedPairsFullBracket(t *testing.T) {
	t.Parallel()

	pairs := KnockoutSeedPairs([]string{"s1", "s2", "s3", "s4", "s5", "s6", "s7", "s8"})

	want := []SeedPair{
		{A: "s1", B: "s8"},
		{A: "s2", B: "s7"},
		{A: "s3", B: "s6"},
		{A: "s4", B: "s5"},
	}
	if len(pairs) != len(want) {
		t.Fatalf("unexpected pair count: got=%d want=%d", len(pairs), len(want))
	}
	for i := range want {
		if pairs[i] != want[i] {
			t.Fatalf("pair %d: got=%+v want=%+v", i, pairs[i], want[i])
		}
	}
}
