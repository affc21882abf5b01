package domain

// CheckStatus classifies the outcome of a single data-source check.
type CheckStatus string

const (
	// CheckSuccess means the source returned usable data.
	CheckSuccess CheckStatus = "success"
	// CheckError means the source attempted and failed (network, timeout, decode).
	CheckError CheckStatus = "error"
	// CheckUnknown means the source responded but had no applicable data.
	CheckUnknown CheckStatus = "unknown"
)

// CheckResult wraps the outcome of one check.
// Invariant: Data != nil only when Status == CheckSuccess.
type CheckResult[T any] struct {
	Status CheckStatus `json:"status"`
	Data   *T          `json:"data,omitempty"`
	Err    string      `json:"error,omitempty"`
}

// OK returns a successful check result holding data.
func OK[T any](data T) CheckResult[T] {
	return CheckResult[T]{Status: CheckSuccess, Data: &data}
}

// Unknown returns a result for a source that had no opinion.
func Unknown[T any]() CheckResult[T] {
	return CheckResult[T]{Status: CheckUnknown}
}

// Fail returns a failed check result. A nil err yields an empty message.
func Fail[T any](err error) CheckResult[T] {
	r := CheckResult[T]{Status: CheckError}
	if err != nil {
		r.Err = err.Error()
	}
	return r
}

// Succeeded reports whether the check produced data.
func (r CheckResult[T]) Succeeded() bool {
	return r.Status == CheckSuccess && r.Data != nil
}

// CheckBag collects every per-check result of a scan.
// All fields are populated by the orchestrator before scoring runs.
type CheckBag struct {
	Chain     CheckResult[ChainContext]        `json:"chain"`
	Curve     CheckResult[CurveState]          `json:"curve"`
	Holders   CheckResult[HolderDistribution]  `json:"holders"`
	Liquidity CheckResult[LiquidityInfo]       `json:"liquidity"`
	Metadata  CheckResult[TokenMetadata]       `json:"metadata"`
	Market    CheckResult[MarketData]          `json:"market"`
	SellSim   CheckResult[SellSimResult]       `json:"sell_sim"`
	Age       CheckResult[TokenAge]            `json:"age"`
	Insider   CheckResult[AdvancedInsiderData] `json:"insider"`
}
