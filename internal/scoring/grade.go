package scoring

import "solana-riskscan/internal/domain"

// F sub-label thresholds on total deducted points. A token can land on F
// from one critical flag with few total points, or from accumulated
// non-critical points; the sub-label tells those apart.
const (
	labelAlmostCertainAbove = 170
	labelExtremeRiskAbove   = 130
)

// ResolveGrade maps a score to a letter grade and severity label.
// Any critical penalty forces grade F regardless of the numeric score: a
// score alone cannot express "safe on every metric except one unforgivable
// one".
func ResolveGrade(score int, hasCritical bool, totalPoints int) (domain.Grade, string) {
	if hasCritical {
		return domain.GradeF, failLabel(totalPoints)
	}

	switch {
	case score >= 80:
		return domain.GradeA, "Low Risk"
	case score >= 60:
		return domain.GradeB, "Moderate Risk"
	case score >= 40:
		return domain.GradeC, "Elevated Risk"
	case score >= 20:
		return domain.GradeD, "High Risk"
	default:
		return domain.GradeF, failLabel(totalPoints)
	}
}

func failLabel(totalPoints int) string {
	switch {
	case totalPoints > labelAlmostCertainAbove:
		return "Almost Certain Scam"
	case totalPoints > labelExtremeRiskAbove:
		return "Extreme Risk"
	default:
		return "Likely Scam"
	}
}
