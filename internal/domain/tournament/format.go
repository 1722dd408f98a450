package tournament

import "github.com/oneeighty-app/oneeighty/internal/domain/game"

// ResolveMatchFormat picks the format a match is played under. Precedence for
// knockout matches is per-round override, then the knockout phase format,
// then the tournament base format; round-robin matches skip the round level.
// A nil return means the match has no leg target and runs as a single leg.
func ResolveMatchFormat(t Tournament, m Match) *game.MatchFormat {
	base := t.Settings.Format
	byPhase := t.Settings.FormatByPhase

	switch m.Phase {
	case PhaseRoundRobin:
		if byPhase != nil && byPhase.RoundRobin != nil {
			return byPhase.RoundRobin
		}
		return base
	case PhaseKnockout:
		if byPhase != nil {
			if override, ok := byPhase.KnockoutRounds[m.Round]; ok && override != nil {
				return override
			}
			if byPhase.Knockout != nil {
				return byPhase.Knockout
			}
		}
		return base
	default:
		return base
	}
}
