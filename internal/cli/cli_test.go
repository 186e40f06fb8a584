package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/nonibytes/patientstore/internal/api"
	"github.com/nonibytes/patientstore/internal/config"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"PATIENTSTORE_STORAGE_BACKEND", "PATIENTSTORE_STORAGE_SQLITE_PATH", "PATIENTSTORE_LOGGING_OUTPUT"} {
		t.Setenv(k, "")
	}
}

func runCLI(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var out, errOut bytes.Buffer
	code := run(context.Background(), args, &out, &errOut)
	return code, out.String(), errOut.String()
}

func TestSeedPatient(t *testing.T) {
	p := SeedPatient(5)
	assert.Equal(t, "official5", p.Name.Use)
	assert.Equal(t, "Иванов5", p.Name.Family)
	assert.Equal(t, []string{"Иван5", "Иванович5"}, p.Name.Given)
	assert.Equal(t, "male", p.Gender)
	assert.Equal(t, api.Active("false"), p.Active)
	assert.True(t, p.BirthDate.Equal(time.Date(2005, 6, 15, 0, 0, 0, 0, time.UTC)))

	assert.Equal(t, "unknown", SeedPatient(0).Gender)
	assert.Equal(t, api.Active("true"), SeedPatient(0).Active)
	assert.Equal(t, "other", SeedPatient(3).Gender)
}

func TestMigrateSeedSearch(t *testing.T) {
	clearEnv(t)
	dbPath := filepath.Join(t.TempDir(), "cli.db")
	common := []string{"--backend", "sqlite", "--sqlite-path", dbPath, "--log-level", "error"}

	code, out, errOut := runCLI(t, append([]string{"migrate"}, common...)...)
	require.Equal(t, 0, code, errOut)
	assert.Contains(t, out, "store ready (sqlite, 0 patients)")

	cfg := config.Default().Storage
	cfg.SQLite.Path = dbPath
	repo, err := OpenRepository(context.Background(), cfg, zap.NewNop(), false)
	require.NoError(t, err)
	ts := httptest.NewServer(api.NewServer(repo, zap.NewNop(), nil, api.Options{}).Router())
	n, err := Seed(context.Background(), ts.Client(), ts.URL+"/api/patient", 12)
	ts.Close()
	require.NoError(t, repo.Close())
	require.NoError(t, err)
	assert.Equal(t, 12, n)

	code, out, errOut = runCLI(t, append([]string{"search", "-b", "ge2005", "-b", "lt2008", "--format", "json"}, common...)...)
	require.Equal(t, 0, code, errOut)
	var got []api.PatientDTO
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	families := make([]string, 0, len(got))
	for _, p := range got {
		families = append(families, p.Name.Family)
	}
	assert.Equal(t, []string{"Иванов5", "Иванов6", "Иванов7"}, families)

	code, out, _ = runCLI(t, append([]string{"search", "-b", "eq2003", "--explain"}, common...)...)
	require.Equal(t, 0, code)
	assert.Contains(t, out, "Found 1 patients")
	assert.Contains(t, out, "birth_date >= ? AND birth_date < ?")
}

func TestSearchBadToken(t *testing.T) {
	clearEnv(t)
	dbPath := filepath.Join(t.TempDir(), "cli.db")
	common := []string{"--sqlite-path", dbPath, "--log-level", "error"}
	code, _, _ := runCLI(t, append([]string{"migrate"}, common...)...)
	require.Equal(t, 0, code)

	code, _, errOut := runCLI(t, append([]string{"search", "-b", "zz2010"}, common...)...)
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "unknown_prefix")
}

func TestSearchWithoutStoreFails(t *testing.T) {
	clearEnv(t)
	code, _, errOut := runCLI(t, "search", "--sqlite-path", filepath.Join(t.TempDir(), "none.db"), "--log-level", "error")
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "schema")
}

func TestSeedStopsOnFailure(t *testing.T) {
	calls := 0
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 3 {
			http.Error(w, "boom", http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	n, err := Seed(context.Background(), ts.Client(), ts.URL, 10)
	require.Error(t, err)
	assert.Equal(t, 2, n)
	assert.True(t, strings.Contains(err.Error(), "boom"))
}

func TestSeedClientPropagatesTrace(t *testing.T) {
	prevTP, prevProp := otel.GetTracerProvider(), otel.GetTextMapPropagator()
	tp := sdktrace.NewTracerProvider()
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.TraceContext{})
	t.Cleanup(func() {
		_ = tp.Shutdown(context.Background())
		otel.SetTracerProvider(prevTP)
		otel.SetTextMapPropagator(prevProp)
	})

	var traceparents []string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		traceparents = append(traceparents, r.Header.Get("traceparent"))
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	client := NewSeedClient(time.Second)
	_, ok := client.Transport.(*otelhttp.Transport)
	require.True(t, ok, "transport %T", client.Transport)
	assert.Equal(t, time.Second, client.Timeout)

	n, err := Seed(context.Background(), client, ts.URL, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	require.Len(t, traceparents, 2)
	for _, h := range traceparents {
		assert.NotEmpty(t, h)
	}
}

func TestUnknownBackend(t *testing.T) {
	clearEnv(t)
	code, _, errOut := runCLI(t, "migrate", "--backend", "oracle")
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "storage.backend")
}

func TestOpenRepositoryGormNeedsDSN(t *testing.T) {
	cfg := config.Default().Storage
	cfg.Backend = config.BackendMySQL
	cfg.MySQL.DSN = "not a dsn"
	_, err := OpenRepository(context.Background(), cfg, zap.NewNop(), false)
	require.Error(t, err)
}
