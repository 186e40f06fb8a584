package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/nonibytes/patientstore/internal/metrics"
	"github.com/nonibytes/patientstore/patientstore"
	"github.com/nonibytes/patientstore/patientstore/storage/sqlite"
)

func newTestServer(t *testing.T) (*httptest.Server, *patientstore.Store, *metrics.Collector) {
	t.Helper()
	store, err := patientstore.Create(context.Background(), sqlite.New(filepath.Join(t.TempDir(), "api.db")), patientstore.DefaultStoreOptions())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	m := metrics.New()
	srv := NewServer(store, zap.NewNop(), m, Options{MetricsPath: "/metrics", RequestTimeout: 5 * time.Second})
	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)
	return ts, store, m
}

func do(t *testing.T, method, url string, body any) (*http.Response, []byte) {
	t.Helper()
	var rd *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(b)
	} else {
		rd = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, url, rd)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	var buf bytes.Buffer
	_, err = buf.ReadFrom(resp.Body)
	require.NoError(t, err)
	return resp, buf.Bytes()
}

func createBody(family, born string) map[string]any {
	return map[string]any{
		"name":      map[string]any{"use": "official", "family": family, "given": []string{"Ivan", "Ivanovich"}},
		"gender":    "Male",
		"birthDate": born,
		"active":    true,
	}
}

func TestCreateGetUpdateDelete(t *testing.T) {
	ts, _, _ := newTestServer(t)

	resp, body := do(t, http.MethodPost, ts.URL+"/api/patient", createBody("Ivanov", "2010-06-15T00:00:00"))
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	assert.NotEmpty(t, resp.Header.Get(requestIDHeader))

	var created PatientDTO
	require.NoError(t, json.Unmarshal(body, &created))
	require.NotEqual(t, uuid.Nil, created.Name.ID)
	assert.Equal(t, "male", created.Gender)
	assert.Equal(t, Active("true"), created.Active)
	assert.True(t, created.BirthDate.Equal(time.Date(2010, 6, 15, 0, 0, 0, 0, time.UTC)))

	resp, body = do(t, http.MethodGet, ts.URL+"/api/patient/"+created.Name.ID.String(), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `"birthDate":"2010-06-15T00:00:00Z"`)
	assert.Contains(t, string(body), `"active":"true"`)

	upd := createBody("Petrov", "2011-01-01")
	upd["name"].(map[string]any)["id"] = created.Name.ID.String()
	resp, body = do(t, http.MethodPut, ts.URL+"/api/patient", upd)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	var updated PatientDTO
	require.NoError(t, json.Unmarshal(body, &updated))
	assert.Equal(t, "Petrov", updated.Name.Family)

	resp, _ = do(t, http.MethodDelete, ts.URL+"/api/patient/"+created.Name.ID.String(), nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp, _ = do(t, http.MethodDelete, ts.URL+"/api/patient/"+created.Name.ID.String(), nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp, _ = do(t, http.MethodGet, ts.URL+"/api/patient/"+created.Name.ID.String(), nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestNotFoundCases(t *testing.T) {
	ts, _, _ := newTestServer(t)

	resp, _ := do(t, http.MethodGet, ts.URL+"/api/patient/not-a-uuid", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	upd := createBody("Ghost", "2000-01-01")
	upd["name"].(map[string]any)["id"] = uuid.NewString()
	resp, body := do(t, http.MethodPut, ts.URL+"/api/patient", upd)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.JSONEq(t, `{"error":"not_found"}`, string(body))
}

func TestCreateRejectsInvalidRecords(t *testing.T) {
	ts, _, _ := newTestServer(t)

	resp, body := do(t, http.MethodPost, ts.URL+"/api/patient", map[string]any{"gender": "male"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, string(body), `"field":"name"`)

	bad := createBody("", "2000-01-01")
	resp, body = do(t, http.MethodPost, ts.URL+"/api/patient", bad)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, string(body), `"field":"name.family"`)

	bad = createBody("Ivanov", "2000-01-01")
	bad["gender"] = "robot"
	resp, _ = do(t, http.MethodPost, ts.URL+"/api/patient", bad)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, body = do(t, http.MethodPost, ts.URL+"/api/patient", "{")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, string(body), "invalid_json")

	resp, _ = do(t, http.MethodPut, ts.URL+"/api/patient", createBody("NoID", "2000-01-01"))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func seedHTTP(t *testing.T, url string) {
	t.Helper()
	for _, born := range []string{"2004-01-01", "2005-01-01", "2010-06-15", "2015-01-01"} {
		resp, body := do(t, http.MethodPost, url+"/api/patient", createBody("P"+born, born))
		require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	}
}

func families(t *testing.T, body []byte) []string {
	t.Helper()
	var out []PatientDTO
	require.NoError(t, json.Unmarshal(body, &out))
	names := make([]string, 0, len(out))
	for _, p := range out {
		names = append(names, p.Name.Family)
	}
	return names
}

func TestSearch(t *testing.T) {
	ts, _, _ := newTestServer(t)
	seedHTTP(t, ts.URL)

	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{"no filter", "", []string{"P2004-01-01", "P2005-01-01", "P2010-06-15", "P2015-01-01"}},
		{"range", "?birthDate=ge2005&birthDate=lt2011", []string{"P2005-01-01", "P2010-06-15"}},
		{"eq month", "?birthDate=eq2010-06", []string{"P2010-06-15"}},
		{"ne year", "?birthDate=ne2010", []string{"P2004-01-01", "P2005-01-01", "P2015-01-01"}},
		{"blank token", "?birthDate=&birthDate=gt2010", []string{"P2015-01-01"}},
		{"in process", "?birthDate=ge2005&birthDate=lt2011&inProcess=true", []string{"P2005-01-01", "P2010-06-15"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := do(t, http.MethodGet, ts.URL+"/api/patient"+tt.query, nil)
			require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
			assert.Equal(t, tt.want, families(t, body))
		})
	}
}

func TestSearchNoMatchesIsEmptyArray(t *testing.T) {
	ts, _, _ := newTestServer(t)
	resp, body := do(t, http.MethodGet, ts.URL+"/api/patient?birthDate=eq1990", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "[]", strings.TrimSpace(string(body)))
}

func TestSearchExplainHeaders(t *testing.T) {
	ts, _, _ := newTestServer(t)
	resp, _ := do(t, http.MethodGet, ts.URL+"/api/patient?birthDate=eq2010&explain=true", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("X-Explain-SQL"), "birth_date >= ? AND birth_date < ?")
	assert.Contains(t, resp.Header.Get("X-Explain-Steps"), "RANGE birth_date")
}

func TestSearchRejectsBadFilters(t *testing.T) {
	ts, _, _ := newTestServer(t)

	tests := []struct {
		query string
		kind  string
		token string
	}{
		{"birthDate=eq201", "token_too_short", "eq201"},
		{"birthDate=xx2020", "unknown_prefix", "xx2020"},
		{"birthDate=eq2010-13", "malformed_date", "eq2010-13"},
		{"birthDate=ge2005&birthDate=eqabcd", "malformed_date", "eqabcd"},
	}
	for _, tt := range tests {
		t.Run(tt.kind+"/"+tt.token, func(t *testing.T) {
			resp, body := do(t, http.MethodGet, ts.URL+"/api/patient?"+tt.query, nil)
			require.Equal(t, http.StatusBadRequest, resp.StatusCode)
			var eb ErrorBody
			require.NoError(t, json.Unmarshal(body, &eb))
			assert.Equal(t, tt.kind, eb.Error)
			assert.Equal(t, tt.token, eb.Token)
		})
	}

	resp, body := do(t, http.MethodGet, ts.URL+"/metrics", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `patientstore_filter_rejections_total{kind="malformed_date"} 2`)
	assert.Contains(t, string(body), `patientstore_http_requests_total{code="400",method="GET",route="/api/patient`)
}

func TestCaseInsensitiveRoutePrefix(t *testing.T) {
	ts, _, _ := newTestServer(t)
	resp, _ := do(t, http.MethodPost, ts.URL+"/api/Patient", createBody("Ivanov0", "2000-06-15T00:00:00"))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestHealthz(t *testing.T) {
	ts, _, _ := newTestServer(t)
	resp, body := do(t, http.MethodGet, ts.URL+"/healthz", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", string(body))
}

type failingRepo struct{ patientstore.Repository }

func (failingRepo) Get(context.Context, uuid.UUID) (patientstore.Patient, error) {
	return patientstore.Patient{}, patientstore.Wrap(patientstore.ErrSQL, "get patient", errors.New("disk on fire"))
}

func TestInternalErrorsAre500(t *testing.T) {
	srv := NewServer(failingRepo{}, zap.NewNop(), nil, Options{})
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/patient/"+uuid.NewString(), nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"internal"}`, rec.Body.String())
}
