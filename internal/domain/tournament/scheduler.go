package tournament

// byeSlot is the synthetic participant the circle method inserts when the
// field is odd. Pairings against it are sit-outs and never scheduled.
const byeSlot = ""

// Round is one round-robin round: the set of pairings playable in parallel.
type Round struct {
	Round int
	Pairs [][2]string
}

// RoundRobinRounds schedules every pair of participants exactly once using
// the circle method: slot 0 stays fixed while the remaining slots rotate by
// one between rounds. For N participants (N made even with a bye slot) it
// produces N-1 rounds of N/2 pairings, minus sit-outs.
func RoundRobinRounds(playerIDs []string) []Round {
	rotation := append([]string(nil), playerIDs...)
	if len(rotation)%2 == 1 {
		rotation = append(rotation, byeSlot)
	}

	total := len(rotation)
	if total < 2 {
		return nil
	}
	half := total / 2

	rounds := make([]Round, 0, total-1)
	for round := 0; round < total-1; round++ {
		pairs := make([][2]string, 0, half)
		for i := 0; i < half; i++ {
			home := rotation[i]
			away := rotation[total-1-i]
			if home != byeSlot && away != byeSlot {
				pairs = append(pairs, [2]string{home, away})
			}
		}
		rounds = append(rounds, Round{Round: round + 1, Pairs: pairs})

		// Rotate everything but the first slot, moving the last
		// element to the front of the rest.
		rest := append([]string(nil), rotation[1:]...)
		last := rest[len(rest)-1]
		copy(rest[1:], rest[:len(rest)-1])
		rest[0] = last
		rotation = append(rotation[:1], rest...)
	}

	return rounds
}

// DistributeGroups deals participants into groupCount buckets by index
// modulo, preserving input order within each group.
func DistributeGroups(playerIDs []string, groupCount int) [][]string {
	if groupCount < 1 {
		groupCount = 1
	}

	groups := make([][]string, groupCount)
	for i, playerID := range playerIDs {
		groups[i%groupCount] = append(groups[i%groupCount], playerID)
	}
	return groups
}

// SeedPair is one first-round bracket pairing. An empty B means seed A
// received a bye.
type SeedPair struct {
	A string
	B string
}

// KnockoutSeedPairs seeds a single-elimination bracket: the bracket size is
// the next power of two at or above the field size, the seed list is padded
// with byes, and seed i meets seed size-1-i.
func KnockoutSeedPairs(seededPlayers []string) []SeedPair {
	size := nextPowerOfTwo(len(seededPlayers))
	seeds := make([]string, size)
	copy(seeds, seededPlayers)

	pairs := make([]SeedPair, 0, size/2)
	for i := 0; i < size/2; i++ {
		pairs = append(pairs, SeedPair{A: seeds[i], B: seeds[size-1-i]})
	}
	return pairs
}

func nextPowerOfTwo(value int) int {
	result := 1
	for result < value {
		result *= 2
	}
	return result
}
