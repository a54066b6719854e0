package domain

// VetoReason identifies the hard-stop condition that disqualified a candidate.
type VetoReason string

const (
	VetoLiquidityFloor      VetoReason = "LIQUIDITY_BELOW_FLOOR"
	VetoHolderConcentration VetoReason = "HOLDER_CONCENTRATION"
	VetoDevHolding          VetoReason = "DEV_HOLDING"
	VetoUnverifiedCreator   VetoReason = "UNVERIFIED_CREATOR"
	VetoCreatorBlacklisted  VetoReason = "CREATOR_BLACKLISTED"
	VetoStaleLaunch         VetoReason = "STALE_LAUNCH"
)

// SafetyVerdict is the outcome of the safety gate for one observation.
// A veto is terminal: the candidate must not proceed to scoring or execution.
type SafetyVerdict struct {
	Passed bool
	Reason VetoReason // empty when Passed
	Detail string     // human-readable observed value vs limit
}

// Pass returns a passing verdict.
func Pass() SafetyVerdict {
	return SafetyVerdict{Passed: true}
}

// Veto returns a vetoing verdict with the given reason and detail.
func Veto(reason VetoReason, detail string) SafetyVerdict {
	return SafetyVerdict{Passed: false, Reason: reason, Detail: detail}
}
