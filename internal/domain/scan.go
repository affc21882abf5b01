package domain

import "time"

// ScanMode is the operating mode a token was scanned in.
// Determined once per scan; all penalty logic branches on it.
type ScanMode string

const (
	ModeCurve      ScanMode = "curve"
	ModeOpenMarket ScanMode = "open_market"
)

// Grade is the letter grade derived from the score.
type Grade string

const (
	GradeA Grade = "A"
	GradeB Grade = "B"
	GradeC Grade = "C"
	GradeD Grade = "D"
	GradeF Grade = "F"
)

// EstimatedCurvePDA marks curve progress reconstructed from market data
// instead of a directly-read curve account.
const EstimatedCurvePDA = "estimated"

// CurveProgress describes how far a curve-mode token is from graduation.
type CurveProgress struct {
	// PDA is the bonding-curve address, or EstimatedCurvePDA when the
	// progress was reconstructed by the fallback estimator.
	PDA              string  `json:"pda"`
	Percent          float64 `json:"percent"` // [0, 100]
	CollectedNative  float64 `json:"collected_native"`
	RemainingNative  float64 `json:"remaining_native"`
	Complete         bool    `json:"complete"`
}

// ScanResult is the aggregate output of one completed scan.
// Immutable once constructed; shared across callers only via the dedup cache.
type ScanResult struct {
	Mint          string               `json:"mint"`
	Mode          ScanMode             `json:"mode"`
	Score         int                  `json:"score"` // [0, 100]
	Grade         Grade                `json:"grade"`
	Label         string               `json:"label"`
	Penalties     []PenaltyDetail      `json:"penalties"`
	TotalDeducted int                  `json:"total_deducted"`
	Checks        CheckBag             `json:"checks"`
	Insider       *AdvancedInsiderData `json:"insider,omitempty"`
	CurveProgress *CurveProgress       `json:"curve_progress,omitempty"`
	AllowListed   bool                 `json:"allow_listed"`
	ScannedAt     time.Time            `json:"scanned_at"`
}

// HasCritical reports whether any penalty carries the critical flag.
func (r *ScanResult) HasCritical() bool {
	for _, p := range r.Penalties {
		if p.Critical {
			return true
		}
	}
	return false
}
