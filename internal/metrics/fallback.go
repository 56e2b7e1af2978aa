package metrics

import "time"

// The fallback dataset is the clinic's reference snapshot. It is shown in
// full whenever live data cannot be used, never mixed with live numbers.

// FallbackMetrics returns the fixed sample metrics. The counts are
// internally consistent: active + inactive == total and churn is
// inactive/total under the same definition the live path uses.
func FallbackMetrics() PatientMetrics {
	return PatientMetrics{
		TotalPatients:        simulated(1247),
		ActivePatients:       simulated(892),
		InactivePatients:     simulated(355),
		NewThisMonth:         simulated(67),
		ChurnRate:            simulated(28.5),
		AverageLifetimeValue: simulated(89500.0),
		NPSScore:             simulated(74),
	}
}

// FallbackOutreach returns the sample reactivation list.
func FallbackOutreach() []OutreachPatient {
	day := func(y int, m time.Month, d int) *time.Time {
		t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
		return &t
	}
	return []OutreachPatient{
		{ID: "1", Name: "María González", Phone: "+56912345678", LastVisit: day(2023, time.August, 15), Treatments: "Limpieza, Blanqueamiento", Value: 45000, Priority: PriorityHigh, Provenance: ProvenanceSimulated},
		{ID: "2", Name: "Carlos Rodríguez", Phone: "+56987654321", LastVisit: day(2023, time.July, 22), Treatments: "Ortodoncia", Value: 320000, Priority: PriorityMedium, Provenance: ProvenanceSimulated},
		{ID: "3", Name: "Ana Martínez", Phone: "+56955667788", LastVisit: day(2023, time.June, 10), Treatments: "Implante", Value: 180000, Priority: PriorityHigh, Provenance: ProvenanceSimulated},
		{ID: "4", Name: "Pedro Silva", Phone: "+56944556677", LastVisit: day(2023, time.September, 3), Treatments: "Endodoncia", Value: 95000, Priority: PriorityLow, Provenance: ProvenanceSimulated},
	}
}

// SampleCampaigns returns the marketing campaign snapshot.
func SampleCampaigns() CampaignReport {
	return CampaignReport{
		Metrics: CampaignMetrics{
			TotalCampaigns:    12,
			ActiveCampaigns:   4,
			ConversionRate:    23.8,
			ROI:               4.2,
			MessagesDelivered: 2341,
			ResponsesReceived: 557,
		},
		Campaigns: []Campaign{
			{ID: 1, Name: "Reactivación Pacientes Q3", Channel: "WhatsApp", Audience: 355, Sent: 355, Responded: 87, Status: "active"},
			{ID: 2, Name: "Limpieza Preventiva", Channel: "SMS", Audience: 892, Sent: 789, Responded: 234, Status: "active"},
			{ID: 3, Name: "Blanqueamiento Verano", Channel: "Email", Audience: 456, Sent: 456, Responded: 78, Status: "paused"},
			{ID: 4, Name: "Ortodoncia Invisible", Channel: "WhatsApp", Audience: 234, Sent: 234, Responded: 56, Status: "active"},
		},
		Provenance: ProvenanceSimulated,
	}
}
