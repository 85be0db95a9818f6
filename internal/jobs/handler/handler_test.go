package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/skillconnect/jobcore/internal/jobs/data/repository"
	"github.com/skillconnect/jobcore/internal/jobs/service"
	"github.com/skillconnect/jobcore/internal/logging"
	"github.com/skillconnect/jobcore/internal/security/jwt"
)

type testAPI struct {
	t      *testing.T
	engine *gin.Engine
	tokens *jwt.TokenManager
	svc    *service.Service
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	gin.SetMode(gin.TestMode)
	svc := service.New(service.Options{
		Jobs:   repository.NewMemoryJobRepository(),
		Logger: logging.Discard(),
	})
	tokens := jwt.NewTokenManager("test-secret")
	r := gin.New()
	NewHandler(svc, logging.Discard()).RegisterRoutes(r.Group("/api"), tokens)
	return &testAPI{t: t, engine: r, tokens: tokens, svc: svc}
}

func (a *testAPI) token(id, role string) string {
	a.t.Helper()
	tok, err := a.tokens.Generate(id, role, time.Hour)
	if err != nil {
		a.t.Fatal(err)
	}
	return tok
}

func (a *testAPI) do(method, path, token string, body any) (*httptest.ResponseRecorder, map[string]any) {
	a.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			a.t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	a.engine.ServeHTTP(rec, req)

	var out map[string]any
	_ = json.Unmarshal(rec.Body.Bytes(), &out)
	return rec, out
}

var createBody = map[string]any{
	"title":       "Fix leaking pipes",
	"description": "Kitchen and bathroom",
	"category":    "plumbing",
	"jobType":     "contract",
	"skills":      []string{"pipe fitting"},
	"location": map[string]any{
		"coordinates": []float64{76.26, 9.93},
		"address":     "12 Harbour Road",
		"city":        "Kochi",
	},
	"salary": map[string]any{"min": 500, "max": 900, "type": "daily"},
}

func TestJobLifecycleOverHTTP(t *testing.T) {
	api := newTestAPI(t)
	employer := api.token("employer-e", "employer")
	worker := api.token("worker-w", "worker")
	other := api.token("worker-w2", "worker")

	rec, job := api.do(http.MethodPost, "/api/jobs", employer, createBody)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d body = %s", rec.Code, rec.Body.String())
	}
	id, _ := job["id"].(string)
	if id == "" || job["status"] != "open" {
		t.Fatalf("created job = %v", job)
	}

	rec, app := api.do(http.MethodPost, "/api/jobs/"+id+"/apply", worker, map[string]string{"coverLetter": "X"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("apply status = %d body = %s", rec.Code, rec.Body.String())
	}
	appID, _ := app["id"].(string)

	rec, _ = api.do(http.MethodPost, "/api/jobs/"+id+"/apply", worker, nil)
	if rec.Code != http.StatusConflict {
		t.Errorf("second apply status = %d, want 409", rec.Code)
	}

	rec = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/jobs/"+id+"/applications", nil)
	req.Header.Set("Authorization", "Bearer "+employer)
	api.engine.ServeHTTP(rec, req)
	var apps []map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &apps); err != nil || len(apps) != 1 {
		t.Fatalf("applications = %s (%v)", rec.Body.String(), err)
	}
	if apps[0]["worker"] != "worker-w" || apps[0]["status"] != "pending" || apps[0]["coverLetter"] != "X" {
		t.Errorf("application = %v", apps[0])
	}

	rec, updated := api.do(http.MethodPut, "/api/jobs/"+id+"/applications/"+appID, employer, map[string]string{"status": "hired"})
	if rec.Code != http.StatusOK || updated["status"] != "hired" {
		t.Fatalf("hire status = %d body = %s", rec.Code, rec.Body.String())
	}

	_, got := api.do(http.MethodGet, "/api/jobs/"+id, "", nil)
	if got["status"] != "in-progress" || got["hiredWorker"] != "worker-w" {
		t.Errorf("job after hire = %v", got)
	}

	rec, _ = api.do(http.MethodDelete, "/api/jobs/"+id+"/applications/"+appID, other, nil)
	if rec.Code != http.StatusForbidden {
		t.Errorf("foreign withdraw status = %d, want 403", rec.Code)
	}
	rec, _ = api.do(http.MethodDelete, "/api/jobs/"+id+"/applications/"+appID, worker, nil)
	if rec.Code != http.StatusConflict {
		t.Errorf("hired withdraw status = %d, want 409", rec.Code)
	}

	rec, _ = api.do(http.MethodDelete, "/api/jobs/"+id, employer, nil)
	if rec.Code != http.StatusOK {
		t.Errorf("delete status = %d", rec.Code)
	}
	rec, _ = api.do(http.MethodGet, "/api/jobs/"+id, "", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("get after delete status = %d, want 404", rec.Code)
	}
	_ = api.svc.Views.Wait(req.Context())
}

func TestRouteGuards(t *testing.T) {
	api := newTestAPI(t)
	worker := api.token("worker-w", "worker")
	employer := api.token("employer-e", "employer")

	tests := []struct {
		name   string
		method string
		path   string
		token  string
		status int
	}{
		{"create anonymous", http.MethodPost, "/api/jobs", "", http.StatusUnauthorized},
		{"create as worker", http.MethodPost, "/api/jobs", worker, http.StatusForbidden},
		{"mine as employer", http.MethodGet, "/api/jobs/applications/me", employer, http.StatusForbidden},
		{"mine as worker", http.MethodGet, "/api/jobs/applications/me", worker, http.StatusOK},
		{"apply as employer", http.MethodPost, "/api/jobs/0123456789abcdef01234567/apply", employer, http.StatusForbidden},
		{"apply missing job", http.MethodPost, "/api/jobs/0123456789abcdef01234567/apply", worker, http.StatusNotFound},
		{"get malformed id", http.MethodGet, "/api/jobs/not-an-id", "", http.StatusNotFound},
		{"list anonymous", http.MethodGet, "/api/jobs", "", http.StatusOK},
		{"search anonymous", http.MethodGet, "/api/jobs/search?lat=9.9&lng=76.2", "", http.StatusOK},
		{"search half point", http.MethodGet, "/api/jobs/search?lat=9.9", "", http.StatusUnprocessableEntity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, _ := api.do(tt.method, tt.path, tt.token, nil)
			if rec.Code != tt.status {
				t.Errorf("status = %d, want %d (body %s)", rec.Code, tt.status, rec.Body.String())
			}
		})
	}
}

func TestCreateValidationErrors(t *testing.T) {
	api := newTestAPI(t)
	employer := api.token("employer-e", "employer")

	rec, body := api.do(http.MethodPost, "/api/jobs", employer, map[string]any{"title": "x"})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", rec.Code)
	}
	if body["kind"] != "validation" {
		t.Errorf("kind = %v", body["kind"])
	}
	if fields, ok := body["errors"].(map[string]any); !ok || fields["title"] == nil {
		t.Errorf("errors = %v", body["errors"])
	}
}

func TestListPageShape(t *testing.T) {
	api := newTestAPI(t)
	employer := api.token("employer-e", "employer")
	for i := 0; i < 3; i++ {
		if rec, _ := api.do(http.MethodPost, "/api/jobs", employer, createBody); rec.Code != http.StatusCreated {
			t.Fatalf("create status = %d", rec.Code)
		}
	}

	rec, page := api.do(http.MethodGet, "/api/jobs?limit=2&page=-1&sortBy=-createdAt%3B%24", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if page["count"] != float64(2) || page["total"] != float64(3) || page["page"] != float64(1) || page["totalPages"] != float64(2) {
		t.Errorf("page = %v", page)
	}

	_, mine := api.do(http.MethodGet, "/api/jobs?employer=me", employer, nil)
	if mine["total"] != float64(3) {
		t.Errorf("employer=me total = %v, want 3", mine["total"])
	}
	_, anon := api.do(http.MethodGet, "/api/jobs?employer=me", "", nil)
	if anon["total"] != float64(0) {
		t.Errorf("anonymous employer=me total = %v, want 0", anon["total"])
	}
}
