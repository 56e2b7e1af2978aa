package dentalink

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"dental-dashboard/internal/platform/httpjson"
)

type fakeAPI struct {
	configured bool
	patients   PatientList
	err        error
	calls      int
}

func (f *fakeAPI) Configured() bool { return f.configured }

func (f *fakeAPI) Patients(ctx context.Context) (PatientList, error) {
	f.calls++
	return f.patients, f.err
}

func (f *fakeAPI) Appointments(ctx context.Context, date string) (json.RawMessage, error) {
	f.calls++
	return json.RawMessage(`{"appointments":[{"date":"` + date + `"}]}`), f.err
}

func (f *fakeAPI) Treatments(ctx context.Context, patientID string) (json.RawMessage, error) {
	f.calls++
	return json.RawMessage(`{"patient":"` + patientID + `"}`), f.err
}

func (f *fakeAPI) FinancialReport(ctx context.Context, startDate, endDate string) (json.RawMessage, error) {
	f.calls++
	return json.RawMessage(`{"from":"` + startDate + `","to":"` + endDate + `"}`), f.err
}

func serve(t *testing.T, api API, body string) *httptest.ResponseRecorder {
	t.Helper()
	r := chi.NewRouter()
	RegisterRoutes(r, NewHandler(NewService(api, zap.NewNop()), zap.NewNop()))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/dentalink", strings.NewReader(body)))
	return rec
}

func TestProxyActions(t *testing.T) {
	cases := []struct {
		name string
		body string
		want string
	}{
		{"patients", `{"action":"getPatients"}`, `{"data":{"patients":[{"id":"9","first_name":"Eva","last_name":"","phone":"","email":"","created_at":"","updated_at":"","last_visit":"","treatments":""}]}}`},
		{"appointments", `{"action":"getAppointments","date":"2025-06-01"}`, `{"data":{"appointments":[{"date":"2025-06-01"}]}}`},
		{"treatments", `{"action":"getTreatments","patientId":"9"}`, `{"data":{"patient":"9"}}`},
		{"financial", `{"action":"getFinancialData","startDate":"2025-01-01","endDate":"2025-01-31"}`, `{"data":{"from":"2025-01-01","to":"2025-01-31"}}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			api := &fakeAPI{configured: true, patients: PatientList{Patients: []Patient{{ID: "9", FirstName: "Eva"}}}}

			rec := serve(t, api, tc.body)

			require.Equal(t, http.StatusOK, rec.Code)
			assert.JSONEq(t, tc.want, rec.Body.String())
		})
	}
}

func TestProxyPatientsFallsBackToMock(t *testing.T) {
	api := &fakeAPI{configured: true, err: errors.New("connection reset")}

	rec := serve(t, api, `{"action":"getPatients"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Data PatientList `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, MockPatients(), resp.Data)
}

func TestProxyUpstreamFailureIs500(t *testing.T) {
	api := &fakeAPI{configured: true, err: &StatusError{StatusCode: 503, Body: "maintenance"}}

	rec := serve(t, api, `{"action":"getAppointments"}`)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "Dentalink API error: 503")
	assert.NotContains(t, rec.Body.String(), "maintenance")
}

func TestProxyValidation(t *testing.T) {
	cases := []struct {
		name  string
		body  string
		field string
	}{
		{"no action", `{}`, "action"},
		{"treatments without patient", `{"action":"getTreatments"}`, "patientId"},
		{"financial without start", `{"action":"getFinancialData","endDate":"2025-01-31"}`, "startDate"},
		{"financial without end", `{"action":"getFinancialData","startDate":"2025-01-01"}`, "endDate"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			api := &fakeAPI{configured: true}

			rec := serve(t, api, tc.body)

			require.Equal(t, http.StatusBadRequest, rec.Code)
			var body map[string]any
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
			assert.Equal(t, "MISSING_REQUIRED_FIELD", body["code"])
			assert.Zero(t, api.calls)
		})
	}
}

func TestProxyUnknownAction(t *testing.T) {
	rec := serve(t, &fakeAPI{configured: true}, `{"action":"dropTables"}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Unknown action: dropTables")
}

func TestProxyWithoutToken(t *testing.T) {
	api := &fakeAPI{}

	rec := serve(t, api, `{"action":"getPatients"}`)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "Dentalink API token not configured")
	assert.Zero(t, api.calls)
}

func TestMockPatientsConvert(t *testing.T) {
	records := MockPatients().Records()

	require.Len(t, records, 4)
	assert.Equal(t, "María González", records[0].FullName())
	require.NotNil(t, records[0].LastVisitAt)
	assert.Equal(t, 2024, records[0].LastVisitAt.Year())
}

func TestProxyRejectsOversizedBody(t *testing.T) {
	body := `{"action":"getAppointments","date":"` + strings.Repeat("9", httpjson.DefaultMaxBody) + `"}`

	rec := serve(t, &fakeAPI{configured: true}, body)

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}
