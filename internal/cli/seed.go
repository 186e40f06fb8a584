package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"github.com/nonibytes/patientstore/internal/api"
	"github.com/nonibytes/patientstore/internal/telemetry"
)

const defaultSeedURL = "http://localhost:8080/api/patient"

var seedGenders = []string{"unknown", "male", "female", "other"}

// SeedPatient returns the i-th generated patient: gender cycles through
// unknown, male, female, other and every even patient is active.
func SeedPatient(i int) api.PatientDTO {
	active := api.Active("false")
	if i%2 == 0 {
		active = "true"
	}
	return api.PatientDTO{
		Name: &api.NameDTO{
			Use:    fmt.Sprintf("official%d", i),
			Family: fmt.Sprintf("Иванов%d", i),
			Given:  []string{fmt.Sprintf("Иван%d", i), fmt.Sprintf("Иванович%d", i)},
		},
		Gender:    seedGenders[i%len(seedGenders)],
		BirthDate: api.BirthDate{Time: time.Date(2000+i, time.June, 15, 0, 0, 0, 0, time.UTC)},
		Active:    active,
	}
}

// Seed posts count generated patients to url and returns how many were
// accepted. It stops at the first failed request.
func Seed(ctx context.Context, client *http.Client, url string, count int) (int, error) {
	for i := 0; i < count; i++ {
		body, err := json.Marshal(SeedPatient(i))
		if err != nil {
			return i, err
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
		if err != nil {
			return i, err
		}
		req.Header.Set("Content-Type", "application/json; charset=utf-8")
		resp, err := client.Do(req)
		if err != nil {
			return i, fmt.Errorf("post patient %d: %w", i, err)
		}
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return i, fmt.Errorf("post patient %d: %s: %s", i, resp.Status, bytes.TrimSpace(msg))
		}
	}
	return count, nil
}

// NewSeedClient returns the client the seed command posts with. Its
// transport records a client span per request and injects trace headers.
func NewSeedClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout:   timeout,
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}
}

func newSeedCommand(a *app) *cobra.Command {
	var (
		count   int
		url     string
		timeout time.Duration
	)
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "POST generated patients to a running API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if count < 0 {
				return fmt.Errorf("--count must not be negative")
			}
			shutdownTracing, err := telemetry.Setup(cmd.Context(), a.cfg.Tracing, nil, a.log)
			if err != nil {
				return err
			}
			defer func() {
				if err := shutdownTracing(context.Background()); err != nil {
					a.log.Warn("tracing shutdown", zap.Error(err))
				}
			}()

			n, err := Seed(cmd.Context(), NewSeedClient(timeout), url, count)
			fmt.Fprintf(cmd.OutOrStdout(), "seeded %d patients\n", n)
			return err
		},
	}
	cmd.Flags().IntVarP(&count, "count", "n", 100, "number of patients")
	cmd.Flags().StringVar(&url, "url", defaultSeedURL, "patient endpoint")
	cmd.Flags().DurationVar(&timeout, "timeout", 10*time.Second, "per-request timeout")
	return cmd
}
