package postgres

import (
	"context"
	"os"
	"strings"
	"testing"
)

func TestValidSchema(t *testing.T) {
	for _, ok := range []string{"patients", "_p1", "Clinic_A"} {
		if err := validSchema(ok); err != nil {
			t.Fatalf("expected %q to be valid: %v", ok, err)
		}
	}
	for _, bad := range []string{"", "1abc", `p"; DROP`, "a-b", "a b"} {
		if err := validSchema(bad); err == nil {
			t.Fatalf("expected %q to be rejected", bad)
		}
	}
}

func TestConnConfigPinsSearchPath(t *testing.T) {
	a := New("postgres://u:p@localhost:5432/db?sslmode=disable", "clinic")
	cfg, err := a.connConfig()
	if err != nil {
		t.Fatalf("connConfig: %v", err)
	}
	if got := cfg.RuntimeParams["search_path"]; got != `"clinic",public` {
		t.Fatalf("unexpected search_path: %s", got)
	}
	if cfg.Host != "localhost" || cfg.Database != "db" {
		t.Fatalf("unexpected parsed config: host=%s db=%s", cfg.Host, cfg.Database)
	}
}

func TestTemplatesUseDollarPlaceholders(t *testing.T) {
	for name, q := range map[string]string{
		"get":    SQLTemplates.GetPatient,
		"insert": SQLTemplates.InsertPatient,
		"update": SQLTemplates.UpdatePatient,
		"delete": SQLTemplates.DeletePatient,
	} {
		if strings.Contains(q, "?") {
			t.Fatalf("%s uses ? placeholders: %s", name, q)
		}
		if !strings.Contains(q, "$1") {
			t.Fatalf("%s does not bind $1: %s", name, q)
		}
	}
}

func TestConnectAgainstServer(t *testing.T) {
	dsn := os.Getenv("PATIENTSTORE_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("PATIENTSTORE_TEST_POSTGRES_DSN not set")
	}
	ctx := context.Background()
	a := New(dsn, "patientstore_test")
	db, err := a.Connect(ctx)
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	defer db.Close()
	if err := a.CreateStore(ctx, db); err != nil {
		t.Fatalf("CreateStore: %v", err)
	}
	if err := a.OpenStore(ctx, db); err != nil {
		t.Fatalf("OpenStore: %v", err)
	}
}
