package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Evacuacion-api/internal/application/dto"
	appocc "github.com/jhoicas/Evacuacion-api/internal/application/occupancy"
	"github.com/jhoicas/Evacuacion-api/internal/domain"
	"github.com/jhoicas/Evacuacion-api/internal/domain/entity"
	"github.com/jhoicas/Evacuacion-api/internal/domain/occupancy"
	"github.com/jhoicas/Evacuacion-api/internal/domain/repository"
	"github.com/jhoicas/Evacuacion-api/internal/infrastructure/memory"
	"github.com/jhoicas/Evacuacion-api/internal/infrastructure/metrics"
	"github.com/jhoicas/Evacuacion-api/internal/infrastructure/pdf"
	apphttp "github.com/jhoicas/Evacuacion-api/internal/interfaces/http"
	pkgjwt "github.com/jhoicas/Evacuacion-api/pkg/jwt"
)

var handlerNow = time.Date(2026, 2, 14, 15, 0, 0, 0, time.UTC)

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

type lockedRunner struct{}

func (lockedRunner) RunLocked(ctx context.Context, id string, _ func(repository.MovementRepository) error) error {
	return domain.ErrLockTimeout
}

type brokenDirectory struct{}

func (brokenDirectory) GetByID(context.Context, string) (*entity.EvacuationCenter, error) {
	return nil, errors.New("conexión rechazada")
}

func (brokenDirectory) GetCapacity(context.Context, string) (int, error) {
	return 0, errors.New("conexión rechazada")
}

type apiFixture struct {
	app   *fiber.App
	store *memory.MovementStore
}

type apiOptions struct {
	runner  appocc.TxRunner
	centers repository.CenterRepository
}

func newAPI(t *testing.T, opts ...func(*apiOptions)) apiFixture {
	t.Helper()
	store := memory.NewMovementStore()
	o := apiOptions{
		runner: memory.NewTxRunner(store, time.Second),
		centers: memory.NewCenterDirectory(
			entity.EvacuationCenter{ID: "c1", Name: "Escuela Central", Municipality: "Legazpi", IndividualCapacityMax: 100},
			entity.EvacuationCenter{ID: "c2", Name: "Gimnasio", Municipality: "Daraga", IndividualCapacityMax: 50},
			entity.EvacuationCenter{ID: "c0", Name: "Capilla", Municipality: "Legazpi"},
		),
	}
	for _, fn := range opts {
		fn(&o)
	}

	clock := fixedClock{handlerNow}
	reg := prometheus.NewRegistry()
	obs := metrics.New(reg)
	record := appocc.NewRecordMovementUseCase(o.runner, o.centers, clock, obs, zerolog.Nop())
	risk := appocc.NewCongestionRiskUseCase(o.centers, store, clock, occupancy.DefaultWeights(), obs)

	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		RecordMovement:  record,
		MovementHistory: appocc.NewMovementHistoryUseCase(o.centers, store),
		CongestionRisk:  risk,
		SituationReport: appocc.NewSituationReportUseCase(risk, o.centers, pdf.NewMarotoReportGenerator(), clock),
		Centers:         o.centers,
		RiskDefaults:    apphttp.RiskDefaults{WindowMinutes: 60, HorizonMinutes: 60},
		MetricsHandler:  promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
		JWTSecret:       testJWTSecret,
		Logger:          zerolog.Nop(),
	})
	return apiFixture{app: app, store: store}
}

func provincial(t *testing.T) string {
	return tokenForRole(t, entity.RoleProvincialAdmin)
}

func call(t *testing.T, app *fiber.App, method, path, auth string, body any) *http.Response {
	t.Helper()
	var r io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func TestRecordMovement_Created(t *testing.T) {
	api := newAPI(t)
	resp := call(t, api.app, http.MethodPost, "/api/centers/c1/movements", provincial(t), dto.RecordMovementRequest{
		FamiliesIn: 3, IndividualsIn: 12, Children: 4, Seniors: 1, Remarks: "llegada en bus",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	entry := decode[dto.MovementEntryResponse](t, resp)
	assert.Equal(t, "c1", entry.CenterID)
	assert.Equal(t, 12, entry.RunningIndividuals)
	assert.Equal(t, 3, entry.RunningFamilies)
	assert.Equal(t, 5, entry.VulnerableTotal)
	assert.Equal(t, testUserID, entry.ReportedBy)
	assert.True(t, handlerNow.Equal(entry.RecordedAt))
}

func TestRecordMovement_ValidacionConCampo(t *testing.T) {
	api := newAPI(t)
	resp := call(t, api.app, http.MethodPost, "/api/centers/c1/movements", provincial(t), map[string]int{"individuals_out": -2})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	body := decode[dto.ErrorResponse](t, resp)
	assert.Equal(t, "VALIDATION", body.Code)
	assert.Equal(t, "individuals_out", body.Field)

	latest, err := api.store.GetLatest(context.Background(), "c1")
	require.NoError(t, err)
	assert.Nil(t, latest)
}

func TestRecordMovement_CuerpoInvalido(t *testing.T) {
	api := newAPI(t)
	req := httptest.NewRequest(http.MethodPost, "/api/centers/c1/movements", strings.NewReader("{no-json"))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", provincial(t))
	resp, err := api.app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestRecordMovement_CentroInexistente(t *testing.T) {
	api := newAPI(t)
	resp := call(t, api.app, http.MethodPost, "/api/centers/nope/movements", provincial(t), dto.RecordMovementRequest{IndividualsIn: 1})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestRecordMovement_AlcanceDelUsuario(t *testing.T) {
	api := newAPI(t)
	staffC1 := tokenFor(t, pkgjwt.Identity{Role: entity.RoleEvacCenterStaff, CenterID: "c1"})
	municipalLegazpi := tokenFor(t, pkgjwt.Identity{Role: entity.RoleMunicipalAdmin, Municipality: "Legazpi"})
	in := dto.RecordMovementRequest{IndividualsIn: 1}

	cases := []struct {
		name   string
		auth   string
		center string
		want   int
	}{
		{"personal en su centro", staffC1, "c1", http.StatusCreated},
		{"personal en otro centro", staffC1, "c2", http.StatusForbidden},
		{"municipal en su municipio", municipalLegazpi, "c1", http.StatusCreated},
		{"municipal fuera de su municipio", municipalLegazpi, "c2", http.StatusForbidden},
		{"municipal con centro inexistente", municipalLegazpi, "nope", http.StatusNotFound},
		{"ciudadano", tokenForRole(t, entity.RoleCitizen), "c1", http.StatusForbidden},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp := call(t, api.app, http.MethodPost, "/api/centers/"+tc.center+"/movements", tc.auth, in)
			defer resp.Body.Close()
			assert.Equal(t, tc.want, resp.StatusCode)
		})
	}
}

func TestRecordMovement_LockTimeoutConRetryAfter(t *testing.T) {
	api := newAPI(t, func(o *apiOptions) { o.runner = lockedRunner{} })
	resp := call(t, api.app, http.MethodPost, "/api/centers/c1/movements", provincial(t), dto.RecordMovementRequest{IndividualsIn: 1})
	require.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "1", resp.Header.Get("Retry-After"))
	assert.Equal(t, "LOCK_TIMEOUT", decode[dto.ErrorResponse](t, resp).Code)
}

func TestRecordMovement_AlmacenCaido(t *testing.T) {
	api := newAPI(t, func(o *apiOptions) { o.centers = brokenDirectory{} })
	resp := call(t, api.app, http.MethodPost, "/api/centers/c1/movements", provincial(t), dto.RecordMovementRequest{IndividualsIn: 1})
	require.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Equal(t, "STORE_ERROR", decode[dto.ErrorResponse](t, resp).Code)
}

func seedMovements(t *testing.T, api apiFixture) {
	t.Helper()
	for _, m := range []dto.RecordMovementRequest{
		{RecordedAt: ptr(handlerNow.Add(-3 * time.Hour)), IndividualsIn: 75},
		{RecordedAt: ptr(handlerNow.Add(-30 * time.Minute)), IndividualsIn: 20, IndividualsOut: 5, Children: 3},
	} {
		resp := call(t, api.app, http.MethodPost, "/api/centers/c1/movements", provincial(t), m)
		require.Equal(t, http.StatusCreated, resp.StatusCode)
		resp.Body.Close()
	}
}

func ptr[T any](v T) *T { return &v }

func TestCongestionRisk_Reporte(t *testing.T) {
	api := newAPI(t)
	seedMovements(t, api)

	resp := call(t, api.app, http.MethodGet, "/api/centers/c1/congestion-risk", tokenForRole(t, entity.RoleCitizen), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	rep := decode[dto.RiskReportResponse](t, resp)
	assert.Equal(t, "c1", rep.CenterID)
	assert.Equal(t, 100, rep.Capacity)
	assert.Equal(t, 90, rep.CurrentTotal)
	assert.Equal(t, 0.9, rep.Occupancy)
	assert.Equal(t, 20, rep.TotalInWindow)
	assert.Equal(t, 5, rep.TotalOutWindow)
	assert.Equal(t, 15, rep.NetFlow)
	assert.Equal(t, 0.25, rep.NetRatePerMin)
	assert.Equal(t, 105, rep.PredictedTotal)
	assert.Equal(t, 1.05, rep.PredictedOccupancy)
	assert.Equal(t, 3, rep.VulnerableTotal)
	assert.Equal(t, 0.0333, rep.VulnerabilityRatio)
	assert.Equal(t, "CRITICAL", rep.RiskLevel)
	assert.Equal(t, occupancy.Recommendation(occupancy.LevelCritical), rep.Recommendation)
	require.NotNil(t, rep.LatestLogTime)
	assert.True(t, handlerNow.Add(-30*time.Minute).Equal(*rep.LatestLogTime))
	assert.Equal(t, 60, rep.WindowMinutes)
	assert.Equal(t, 60, rep.HorizonMinutes)
}

func TestCongestionRisk_ParametrosRecortados(t *testing.T) {
	api := newAPI(t)

	resp := call(t, api.app, http.MethodGet, "/api/centers/c1/congestion-risk?window=1&horizon=9999", provincial(t), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	rep := decode[dto.RiskReportResponse](t, resp)
	assert.Equal(t, 5, rep.WindowMinutes)
	assert.Equal(t, 360, rep.HorizonMinutes)
	assert.Nil(t, rep.LatestLogTime)
	assert.Equal(t, "LOW", rep.RiskLevel)

	resp = call(t, api.app, http.MethodGet, "/api/centers/c1/congestion-risk?window=5000&horizon=-3", provincial(t), nil)
	rep = decode[dto.RiskReportResponse](t, resp)
	assert.Equal(t, 1440, rep.WindowMinutes)
	assert.Equal(t, 5, rep.HorizonMinutes)
}

func TestCongestionRisk_ParametroNoEntero(t *testing.T) {
	api := newAPI(t)
	resp := call(t, api.app, http.MethodGet, "/api/centers/c1/congestion-risk?horizon=dos", provincial(t), nil)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	body := decode[dto.ErrorResponse](t, resp)
	assert.Equal(t, "VALIDATION", body.Code)
	assert.Equal(t, "horizon", body.Field)
}

func TestCongestionRisk_CapacidadInvalida(t *testing.T) {
	api := newAPI(t)
	resp := call(t, api.app, http.MethodGet, "/api/centers/c0/congestion-risk", provincial(t), nil)
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	body := decode[dto.RiskErrorResponse](t, resp)
	assert.Equal(t, "c0", body.CenterID)
	assert.Equal(t, "INVALID_CAPACITY", body.Code)
	assert.Equal(t, domain.ReasonInvalidCapacity, body.Error)
}

func TestCongestionRisk_CentroInexistente(t *testing.T) {
	api := newAPI(t)
	resp := call(t, api.app, http.MethodGet, "/api/centers/nope/congestion-risk", provincial(t), nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestCongestionRisk_SinToken(t *testing.T) {
	api := newAPI(t)
	resp := call(t, api.app, http.MethodGet, "/api/centers/c1/congestion-risk", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestCongestionRiskPDF(t *testing.T) {
	api := newAPI(t)
	seedMovements(t, api)

	resp := call(t, api.app, http.MethodGet, "/api/centers/c1/congestion-risk/pdf", provincial(t), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	defer resp.Body.Close()
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Greater(t, len(raw), 4)
	assert.Equal(t, "%PDF", string(raw[:4]))
}

func TestListMovements(t *testing.T) {
	api := newAPI(t)
	seedMovements(t, api)

	resp := call(t, api.app, http.MethodGet, "/api/centers/c1/movements?limit=1", provincial(t), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	list := decode[dto.MovementListResponse](t, resp)
	require.Len(t, list.Items, 1)
	assert.Equal(t, 90, list.Items[0].RunningIndividuals)
	assert.Equal(t, 1, list.Page.Limit)

	from := handlerNow.Add(-4 * time.Hour).Format(time.RFC3339)
	to := handlerNow.Add(-time.Hour).Format(time.RFC3339)
	resp = call(t, api.app, http.MethodGet, "/api/centers/c1/movements?from="+from+"&to="+to, provincial(t), nil)
	list = decode[dto.MovementListResponse](t, resp)
	require.Len(t, list.Items, 1)
	assert.Equal(t, 75, list.Items[0].IndividualsIn)

	resp = call(t, api.app, http.MethodGet, "/api/centers/c1/movements?from=ayer", provincial(t), nil)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "from", decode[dto.ErrorResponse](t, resp).Field)
}

func TestMetricsEndpoint(t *testing.T) {
	api := newAPI(t)
	seedMovements(t, api)
	resp := call(t, api.app, http.MethodGet, "/api/centers/c1/congestion-risk", provincial(t), nil)
	resp.Body.Close()

	resp = call(t, api.app, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `evac_movements_recorded_total{center_id="c1"} 2`)
	assert.Contains(t, string(raw), `evac_risk_assessments_total{level="CRITICAL"} 1`)
}
