package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/nonibytes/patientstore/internal/telemetry"
	"github.com/nonibytes/patientstore/patientstore"
)

const maxBodyBytes = 1 << 20

func (s *Server) getPatient(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeJSON(w, http.StatusNotFound, ErrorBody{Error: string(patientstore.ErrNotFound)})
		return
	}
	p, err := s.repo.Get(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, NewPatientDTO(p))
}

func (s *Server) createPatient(w http.ResponseWriter, r *http.Request) {
	p, ok := s.decodePatient(w, r)
	if !ok {
		return
	}
	stored, err := s.repo.Put(r.Context(), p)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, NewPatientDTO(stored))
}

func (s *Server) updatePatient(w http.ResponseWriter, r *http.Request) {
	p, ok := s.decodePatient(w, r)
	if !ok {
		return
	}
	if p.ID == uuid.Nil {
		writeJSON(w, http.StatusBadRequest, ErrorBody{Error: string(patientstore.ErrSchema), Field: "name.id", Message: "id is required"})
		return
	}
	stored, err := s.repo.Update(r.Context(), p)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, NewPatientDTO(stored))
}

func (s *Server) deletePatient(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeJSON(w, http.StatusNotFound, ErrorBody{Error: string(patientstore.ErrNotFound)})
		return
	}
	deleted, err := s.repo.Delete(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if !deleted {
		writeJSON(w, http.StatusNotFound, ErrorBody{Error: string(patientstore.ErrNotFound)})
		return
	}
	w.WriteHeader(http.StatusOK)
}

// searchPatients answers GET /api/patient?birthDate=..&birthDate=..
// Optional query flags: explain=true adds X-Explain-SQL, inProcess=true
// filters in memory instead of in the database.
func (s *Server) searchPatients(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	tokens := q["birthDate"]
	opts := patientstore.SearchOptions{
		Explain:   queryBool(q.Get("explain")),
		InProcess: queryBool(q.Get("inProcess")),
	}

	ctx, span := telemetry.Tracer().Start(r.Context(), "patient.search")
	span.SetAttributes(
		attribute.StringSlice("patient.birth_date", tokens),
		attribute.Bool("patient.in_process", opts.InProcess),
	)
	defer span.End()

	start := time.Now()
	res, err := s.repo.SearchWithOptions(ctx, tokens, opts)
	mode := "pushdown"
	if opts.InProcess {
		mode = "in_process"
	}
	s.metrics.ObserveSearch(mode, time.Since(start))
	if err != nil {
		span.RecordError(err)
		s.writeError(w, r, err)
		return
	}
	span.SetAttributes(attribute.Int("patient.matched", len(res.Patients)))

	if opts.Explain && res.ExplainSQL != "" {
		w.Header().Set("X-Explain-SQL", res.ExplainSQL)
		w.Header().Set("X-Explain-Steps", strings.Join(res.ExplainSteps, "; "))
	}
	writeJSON(w, http.StatusOK, PatientDTOs(res.Patients))
}

func (s *Server) decodePatient(w http.ResponseWriter, r *http.Request) (patientstore.Patient, bool) {
	var dto PatientDTO
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&dto); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorBody{Error: "invalid_json", Message: err.Error()})
		return patientstore.Patient{}, false
	}
	p, err := dto.toPatient()
	if err != nil {
		s.writeError(w, r, err)
		return patientstore.Patient{}, false
	}
	return p, true
}

func pathID(r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

func queryBool(v string) bool {
	b, _ := strconv.ParseBool(v)
	return b
}
