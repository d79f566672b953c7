package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"techsel/internal/repository"
	"techsel/internal/service"
	"techsel/pkg/config"
	"techsel/pkg/domain"
)

type stubRepo struct {
	solutions map[string]*domain.Solution
	saved     []*domain.Solution
}

func newStubRepo() *stubRepo {
	return &stubRepo{solutions: make(map[string]*domain.Solution)}
}

func (s *stubRepo) Save(_ context.Context, sol *domain.Solution) error {
	sol.ID = "sol-1"
	sol.CreatedAt = time.Now()
	s.saved = append(s.saved, sol)
	s.solutions[sol.ID] = sol
	return nil
}

func (s *stubRepo) GetByID(_ context.Context, id string) (*domain.Solution, error) {
	if sol, ok := s.solutions[id]; ok {
		return sol, nil
	}
	return nil, repository.ErrSolutionNotFound
}

func (s *stubRepo) GetByPlanHash(_ context.Context, _ string) (*domain.Solution, error) {
	return nil, repository.ErrSolutionNotFound
}

func (s *stubRepo) List(_ context.Context, _ *domain.SolutionFilter) ([]*domain.Solution, int64, error) {
	var sols []*domain.Solution
	for _, sol := range s.solutions {
		sols = append(sols, sol)
	}
	return sols, int64(len(sols)), nil
}

func (s *stubRepo) Delete(_ context.Context, _ string) error {
	return nil
}

func testConfig() *config.Config {
	return &config.Config{
		Solver: config.SolverConfig{
			SolveTimeout:    5 * time.Second,
			MaxTechnologies: 100,
			MaxDependencies: 1000,
			MaxPlanBytes:    1 << 20,
		},
		Report: config.ReportConfig{CompanyName: "Techsel"},
	}
}

func setupRouter(t *testing.T) (*chi.Mux, *stubRepo) {
	t.Helper()

	repo := newStubRepo()
	cfg := testConfig()
	svc := service.NewPlannerService(cfg.Solver, repo, nil)

	r := chi.NewRouter()
	New(svc, cfg).Register(r)

	return r, repo
}

const planJSON = `{
	"technologies": [
		{"name": "pottery", "profit": 6, "cost": 2},
		{"name": "writing", "profit": 4, "cost": 8},
		{"name": "wheel", "profit": 5, "cost": 1}
	],
	"dependencies": [
		{"from": "writing", "to": "pottery"}
	]
}`

func TestHealthz(t *testing.T) {
	r, _ := setupRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
}

func TestSolvePlan_JSON(t *testing.T) {
	r, repo := setupRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/v1/plans/solve", strings.NewReader(planJSON))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Revenue int64    `json:"revenue"`
		Chosen  []string `json:"chosen"`
		Cached  bool     `json:"cached"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	assert.Equal(t, int64(8), resp.Revenue)
	assert.Equal(t, []string{"pottery", "wheel"}, resp.Chosen)
	assert.False(t, resp.Cached)
	assert.Len(t, repo.saved, 1)
}

func TestSolvePlan_TextFormat(t *testing.T) {
	r, _ := setupRouter(t)

	planText := "2 1\npottery 2 6\nwriting 8 4\nwriting -> pottery\n"

	req := httptest.NewRequest(http.MethodPost, "/v1/plans/solve", strings.NewReader(planText))
	req.Header.Set("Content-Type", "text/plain")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Revenue int64    `json:"revenue"`
		Chosen  []string `json:"chosen"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	assert.Equal(t, int64(4), resp.Revenue)
	assert.Equal(t, []string{"pottery"}, resp.Chosen)
}

func TestSolvePlan_MalformedJSON(t *testing.T) {
	r, _ := setupRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/v1/plans/solve", strings.NewReader(`{"technologies": [`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "MALFORMED_PLAN")
}

func TestSolvePlan_EmptyPlan(t *testing.T) {
	r, _ := setupRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/v1/plans/solve",
		strings.NewReader(`{"technologies": [], "dependencies": []}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "EMPTY_PLAN")
}

func TestSolvePlan_ValidationError(t *testing.T) {
	r, _ := setupRouter(t)

	body := `{
		"technologies": [
			{"name": "a", "profit": 1, "cost": 1},
			{"name": "a", "profit": 2, "cost": 2}
		]
	}`

	req := httptest.NewRequest(http.MethodPost, "/v1/plans/solve", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "DUPLICATE_TECHNOLOGY")
}

func TestSolvePlan_BodyTooLarge(t *testing.T) {
	repo := newStubRepo()
	cfg := testConfig()
	cfg.Solver.MaxPlanBytes = 64
	svc := service.NewPlannerService(cfg.Solver, repo, nil)

	r := chi.NewRouter()
	New(svc, cfg).Register(r)

	req := httptest.NewRequest(http.MethodPost, "/v1/plans/solve", strings.NewReader(planJSON))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetSolution(t *testing.T) {
	r, repo := setupRouter(t)
	repo.solutions["sol-9"] = &domain.Solution{
		ID:       "sol-9",
		PlanHash: "deadbeef",
		Revenue:  4,
		Chosen:   []string{"pottery"},
	}

	req := httptest.NewRequest(http.MethodGet, "/v1/solutions/sol-9", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"id":"sol-9"`)
	assert.Contains(t, rec.Body.String(), "pottery")
}

func TestGetSolution_NotFound(t *testing.T) {
	r, _ := setupRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/v1/solutions/missing", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "NOT_FOUND")
}

func TestListSolutions(t *testing.T) {
	r, repo := setupRouter(t)
	repo.solutions["sol-1"] = &domain.Solution{ID: "sol-1", Revenue: 4}

	req := httptest.NewRequest(http.MethodGet, "/v1/solutions?limit=10&offset=0", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Solutions []json.RawMessage `json:"solutions"`
		Total     int64             `json:"total"`
		Limit     int               `json:"limit"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	assert.Equal(t, int64(1), resp.Total)
	assert.Len(t, resp.Solutions, 1)
	assert.Equal(t, 10, resp.Limit)
}

func TestListSolutions_InvalidPagination(t *testing.T) {
	r, _ := setupRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/v1/solutions?limit=abc", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "INVALID_PAGINATION")
}

func TestExportSolution_CSV(t *testing.T) {
	r, repo := setupRouter(t)
	repo.solutions["sol-9"] = &domain.Solution{
		ID:       "sol-9",
		PlanHash: "deadbeef",
		Revenue:  22,
		Chosen:   []string{"bronze", "mathematics"},
	}

	req := httptest.NewRequest(http.MethodGet, "/v1/solutions/sol-9/export?format=csv", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "solution-sol-9.csv")
	assert.Contains(t, rec.Body.String(), "bronze")
}

func TestExportSolution_Excel(t *testing.T) {
	r, repo := setupRouter(t)
	repo.solutions["sol-9"] = &domain.Solution{ID: "sol-9", Revenue: 22}

	req := httptest.NewRequest(http.MethodGet, "/v1/solutions/sol-9/export?format=xlsx", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("PK")))
}

func TestExportSolution_UnknownFormat(t *testing.T) {
	r, repo := setupRouter(t)
	repo.solutions["sol-9"] = &domain.Solution{ID: "sol-9"}

	req := httptest.NewRequest(http.MethodGet, "/v1/solutions/sol-9/export?format=docx", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "INVALID_ARGUMENT")
}

func TestExportSolution_NotFound(t *testing.T) {
	r, _ := setupRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/v1/solutions/missing/export?format=csv", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
