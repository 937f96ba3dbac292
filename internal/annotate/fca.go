// Package annotate attaches a False Claims Act relevance annotation to each
// merged, enriched provider record: the dominant signal, its statute
// citation, a narrative description, and suggested investigation steps
// (spec.md §4.5).
package annotate

import (
	"fmt"
	"strings"

	"github.com/TheAuroraAI/medicaid-fraud-detector/internal/signals"
	"github.com/TheAuroraAI/medicaid-fraud-detector/pkg/models"
)

const fcaStatuteBase = "31 U.S.C. § 3729"

// statuteBySignal maps a signal_type to its US Code subsection, per
// spec.md §6 ("Statute mapping") for S1–S9 and SPEC_FULL.md §4.2a for the
// supplemental S10–S14. Signal types missing from it fall back to
// genericStatute.
var statuteBySignal = map[string]string{
	signals.SignalExcludedProviderBilling: "(a)(1)(A)",
	signals.SignalStatisticalOutlier:      "(a)(1)(A)",
	signals.SignalRapidEscalation:         "(a)(1)(A)",
	signals.SignalImpossibleVolume:        "(a)(1)(A)",
	signals.SignalHomeHealthAbuse:         "(a)(1)(A)",
	signals.SignalSharedOfficialNetwork:   "(a)(1)(C)",
	signals.SignalGeographicAnomaly:       "(a)(1)(A)",
	signals.SignalTemporalAnomaly:         "(a)(1)(A)",
	signals.SignalProcedureConcentration:  "(a)(1)(A)",
	signals.SignalWorkforceImpossibility:  "(a)(1)(B)",
	signals.SignalBurstEnrollmentNetwork:  "(a)(1)(C)",
	signals.SignalPhantomServicingHub:     "(a)(1)(A)",
	signals.SignalBillingMonoculture:      "(a)(1)(A)",
	signals.SignalBustOutCollapse:         "(a)(1)(A)",
}

// investigationSteps holds 5-6 signal-specific templated steps. "{name}",
// "{npi}", and "{state}" are literal tokens substituted by steps() with a
// plain strings.Replacer, so template authors never have to count slots.
var investigationSteps = map[string][]string{
	signals.SignalExcludedProviderBilling: {
		"Confirm {name} (NPI {npi}) appears on the current OIG List of Excluded Individuals/Entities.",
		"Pull every claim paid to NPI {npi} since the exclusion effective date.",
		"Determine whether the excluded party is billing directly or through a reassignment.",
		"Issue a payment suspension pending review.",
		"Refer to the state Medicaid Fraud Control Unit for recovery action.",
	},
	signals.SignalStatisticalOutlier: {
		"Compare {name}'s billing profile against peers in the same taxonomy.",
		"Sample claims from NPI {npi} and verify medical necessity documentation.",
		"Check for duplicate or split-billed claims inflating total_paid.",
		"Request an audit of the provider's top procedure codes by paid amount.",
		"Interview the billing agent of record for NPI {npi}.",
	},
	signals.SignalRapidEscalation: {
		"Trace the provider's enrollment history and any change of ownership around the spike month.",
		"Verify the provider's billing capacity (staff, facility) against the claimed volume.",
		"Request beneficiary attestations for claims filed in the peak month.",
		"Check for a closed or abandoned business address following the spike.",
		"Cross-reference NPI {npi} against the shared-official network signal.",
	},
	signals.SignalImpossibleVolume: {
		"Request the provider's appointment schedule for the flagged month(s).",
		"Verify staffing levels at {name} (NPI {npi}) against claimed claims/beneficiary ratios.",
		"Sample individual claims for duplicate service dates.",
		"Check whether services were billed under a shared or group NPI.",
		"Refer the flagged months for a desk audit.",
	},
	signals.SignalHomeHealthAbuse: {
		"Verify the plan of care on file for a sample of beneficiaries at {name}.",
		"Confirm visit frequency against physician orders for NPI {npi}.",
		"Check for beneficiaries with no documented face-to-face encounter.",
		"Request home visit logs or GPS verification records if available.",
		"Compare beneficiary count against the servicing staff roster.",
	},
	signals.SignalSharedOfficialNetwork: {
		"Build an ownership chart for every NPI tied to this authorized official.",
		"Check state incorporation records for shared addresses among {name}'s network in {state}.",
		"Verify each entity in the network has independent staff and facilities.",
		"Determine whether claims are being split across entities to avoid billing caps.",
		"Refer the network, not just NPI {npi}, for coordinated review.",
	},
	signals.SignalGeographicAnomaly: {
		"Compare {name}'s billing to same-taxonomy peers within {state} specifically.",
		"Verify the provider's practice location matches its enrolled address.",
		"Check for beneficiaries traveling implausible distances to NPI {npi}.",
		"Request a sample of claims for medical necessity review.",
		"Confirm no data entry error misattributed out-of-state claims.",
	},
	signals.SignalTemporalAnomaly: {
		"Identify what changed at {name} (NPI {npi}) immediately before each spike month.",
		"Request documentation supporting the spike month's claim volume.",
		"Check for a batch resubmission or corrected-claims event explaining the spike.",
		"Compare spike months against known billing cycle changes.",
		"Sample spike-month claims for duplicate or phantom beneficiaries.",
	},
	signals.SignalProcedureConcentration: {
		"Request clinical documentation supporting the dominant procedure code at {name}.",
		"Verify the code is appropriate for the provider's enrolled specialty.",
		"Compare the per-claim paid amount for NPI {npi} against the fee schedule.",
		"Check for upcoding relative to lower-intensity codes in the same family.",
		"Sample claims for medical necessity and supporting notes.",
	},
	signals.SignalWorkforceImpossibility: {
		"Request the full roster of servicing staff for {name} (NPI {npi}) in the flagged month.",
		"Verify each servicing NPI is independently credentialed and actively employed.",
		"Check for shared or recycled servicing NPIs across shifts.",
		"Compare claimed hours against standard facility operating hours.",
		"Refer the flagged month for a staffing audit.",
	},
	signals.SignalBurstEnrollmentNetwork: {
		"Check whether {name}'s network entities share an incorporation agent or address.",
		"Verify each entity enumerated in the same quarter has distinct, active operations.",
		"Compare the network's combined billing growth against its combined enrollment date.",
		"Request Articles of Incorporation for each member entity.",
		"Refer the network for a coordinated enrollment review.",
	},
	signals.SignalPhantomServicingHub: {
		"Confirm servicing NPI {npi} is an actual credentialed individual, not a placeholder.",
		"Check whether the servicing provider has any documented relationship with each billing NPI.",
		"Request employment or contractor agreements linking the servicing and billing entities.",
		"Sample claims across the billing NPIs for a common point of origin.",
		"Refer the servicing NPI for identity verification.",
	},
	signals.SignalBillingMonoculture: {
		"Request clinical justification for {name} (NPI {npi}) billing almost exclusively one code.",
		"Compare the dominant code's usage rate against taxonomy peers.",
		"Check for a templated or auto-generated claim submission pattern.",
		"Sample a set of claims for documentation supporting the code choice.",
		"Verify the code's reimbursement rate against the fee schedule.",
	},
	signals.SignalBustOutCollapse: {
		"Determine whether {name} (NPI {npi}) is still an active, reachable enrolled provider.",
		"Check for a closed business address or disconnected phone following the collapse month.",
		"Attempt to recover overpayments before any further claims are processed.",
		"Cross-reference the collapse date against other providers' bust-out timing.",
		"Refer for expedited payment suspension.",
	},
}

const genericStatute = "(a)(1)(A)"

// Annotate selects the dominant signal on rec (lowest severity-index,
// ties broken by input order — spec.md §4.5) and attaches an FCAAnnotation.
// rec.Signals must already be in dominant-first order, which merge.Merge's
// escalation pass guarantees.
func Annotate(rec *models.ProviderRecord) {
	if len(rec.Signals) == 0 {
		return
	}
	dominant := rec.Signals[0]

	subsection, ok := statuteBySignal[dominant.SignalType]
	if !ok {
		subsection = genericStatute
	}

	rec.Annotation = &models.FCAAnnotation{
		ViolationDescription:        describe(rec, dominant),
		StatuteReference:            fcaStatuteBase + subsection,
		EstimatedGovernmentLossUSD:  roundCents(rec.CombinedOverpaymentUSD),
		SuggestedInvestigationSteps: steps(rec, dominant),
	}
}

func describe(rec *models.ProviderRecord, dominant models.Signal) string {
	state := rec.State
	if state == "" {
		state = "an unknown state"
	}
	return fmt.Sprintf(
		"%s (NPI %s), enrolled in %s, triggered the %s signal with an estimated overpayment of $%.2f across %d signal(s).",
		nameOrPlaceholder(rec), rec.NPI, state, dominant.SignalType, rec.CombinedOverpaymentUSD, len(rec.Signals),
	)
}

func steps(rec *models.ProviderRecord, dominant models.Signal) []string {
	templates, ok := investigationSteps[dominant.SignalType]
	if !ok {
		templates = investigationSteps[signals.SignalStatisticalOutlier]
	}
	name := nameOrPlaceholder(rec)
	state := rec.State
	if state == "" {
		state = "unknown"
	}
	replacer := strings.NewReplacer("{name}", name, "{npi}", rec.NPI, "{state}", state)
	out := make([]string, len(templates))
	for i, t := range templates {
		out[i] = replacer.Replace(t)
	}
	return out
}

func nameOrPlaceholder(rec *models.ProviderRecord) string {
	if models.IsPlaceholderName(rec.Name, rec.NPI) {
		return "NPI " + rec.NPI
	}
	return rec.Name
}

func roundCents(v float64) float64 {
	return float64(int64(v*100+0.5)) / 100
}
