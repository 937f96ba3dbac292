package signals

// Signal type identifiers. These are the stable strings written to
// models.Signal.SignalType and read back by internal/annotate's statute
// mapping — keep the two in sync.
const (
	SignalExcludedProviderBilling = "excluded_provider_billing"
	SignalStatisticalOutlier      = "statistical_billing_outlier"
	SignalRapidEscalation         = "rapid_escalation"
	SignalImpossibleVolume        = "impossible_service_volume"
	SignalHomeHealthAbuse         = "home_health_abuse"
	SignalSharedOfficialNetwork   = "shared_official_network"
	SignalGeographicAnomaly       = "geographic_anomaly"
	SignalTemporalAnomaly         = "temporal_billing_anomaly"
	SignalProcedureConcentration  = "procedure_code_concentration"
	SignalWorkforceImpossibility  = "workforce_impossibility"
	SignalBurstEnrollmentNetwork  = "burst_enrollment_network"
	SignalPhantomServicingHub     = "phantom_servicing_hub"
	SignalBillingMonoculture      = "billing_monoculture"
	SignalBustOutCollapse         = "bust_out_ramp_collapse"
)
