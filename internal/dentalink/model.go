package dentalink

import (
	"time"

	"dental-dashboard/internal/metrics"
)

// Action names accepted by the proxy endpoint.
const (
	ActionGetPatients      = "getPatients"
	ActionGetAppointments  = "getAppointments"
	ActionGetTreatments    = "getTreatments"
	ActionGetFinancialData = "getFinancialData"
)

// Patient is a patient as Dentalink returns it.
type Patient struct {
	ID         string `json:"id"`
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	Phone      string `json:"phone"`
	Email      string `json:"email"`
	CreatedAt  string `json:"created_at"`
	UpdatedAt  string `json:"updated_at"`
	LastVisit  string `json:"last_visit"`
	Treatments string `json:"treatments"`
}

type PatientList struct {
	Patients []Patient `json:"patients"`
}

// ProxyRequest is the body of POST /dentalink. Only the fields the action
// needs are read.
type ProxyRequest struct {
	Action    string `json:"action"`
	Date      string `json:"date,omitempty"`
	PatientID string `json:"patientId,omitempty"`
	StartDate string `json:"startDate,omitempty"`
	EndDate   string `json:"endDate,omitempty"`
}

type ProxyResponse struct {
	Data any `json:"data"`
}

// Record converts the wire patient into the aggregator's input. Timestamps
// that are missing or not RFC 3339 are treated as unknown.
func (p Patient) Record() metrics.PatientRecord {
	rec := metrics.PatientRecord{
		ID:          p.ID,
		FirstName:   p.FirstName,
		LastName:    p.LastName,
		Phone:       p.Phone,
		Email:       p.Email,
		Treatments:  p.Treatments,
		LastVisitAt: parseTime(p.LastVisit),
		UpdatedAt:   parseTime(p.UpdatedAt),
	}
	if created := parseTime(p.CreatedAt); created != nil {
		rec.CreatedAt = *created
	}
	return rec
}

// Records converts every patient in the list.
func (l PatientList) Records() []metrics.PatientRecord {
	out := make([]metrics.PatientRecord, 0, len(l.Patients))
	for _, p := range l.Patients {
		out = append(out, p.Record())
	}
	return out
}

func parseTime(s string) *time.Time {
	if s == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil
	}
	return &t
}

// MockPatients is served by getPatients when Dentalink cannot be reached.
func MockPatients() PatientList {
	return PatientList{Patients: []Patient{
		{
			ID:         "1",
			FirstName:  "María",
			LastName:   "González",
			Phone:      "+56912345678",
			Email:      "maria@email.com",
			CreatedAt:  "2024-01-15T10:00:00Z",
			UpdatedAt:  "2024-12-01T14:30:00Z",
			LastVisit:  "2024-11-15T09:00:00Z",
			Treatments: "Limpieza, Blanqueamiento",
		},
		{
			ID:         "2",
			FirstName:  "Carlos",
			LastName:   "Rodríguez",
			Phone:      "+56987654321",
			Email:      "carlos@email.com",
			CreatedAt:  "2023-06-20T15:30:00Z",
			UpdatedAt:  "2024-07-22T11:15:00Z",
			LastVisit:  "2024-07-22T11:15:00Z",
			Treatments: "Ortodoncia",
		},
		{
			ID:         "3",
			FirstName:  "Ana",
			LastName:   "Martínez",
			Phone:      "+56955667788",
			Email:      "ana@email.com",
			CreatedAt:  "2023-12-10T08:45:00Z",
			UpdatedAt:  "2024-06-10T16:20:00Z",
			LastVisit:  "2024-06-10T16:20:00Z",
			Treatments: "Implante",
		},
		{
			ID:         "4",
			FirstName:  "Pedro",
			LastName:   "Silva",
			Phone:      "+56944556677",
			Email:      "pedro@email.com",
			CreatedAt:  "2024-02-28T13:10:00Z",
			UpdatedAt:  "2024-09-03T10:45:00Z",
			LastVisit:  "2024-09-03T10:45:00Z",
			Treatments: "Endodoncia",
		},
	}}
}
