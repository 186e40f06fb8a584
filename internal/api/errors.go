package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/nonibytes/patientstore/internal/logging"
	"github.com/nonibytes/patientstore/patientstore"
)

// ErrorBody is the JSON body of every non-2xx response.
type ErrorBody struct {
	Error   string `json:"error"`
	Token   string `json:"token,omitempty"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps store errors onto status codes: rejected filters and
// invalid records are 400, missing records 404, anything else 500.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var pe *patientstore.Error
	switch {
	case patientstore.IsKind(err, patientstore.ErrQueryRejected):
		body := ErrorBody{Error: string(patientstore.ErrQueryRejected), Message: err.Error()}
		if fe, ok := patientstore.FilterError(err); ok {
			body.Error = string(fe.Kind)
			body.Token = fe.Token
			s.metrics.ObserveRejection(string(fe.Kind))
		}
		writeJSON(w, http.StatusBadRequest, body)
	case patientstore.IsKind(err, patientstore.ErrNotFound):
		writeJSON(w, http.StatusNotFound, ErrorBody{Error: string(patientstore.ErrNotFound)})
	case patientstore.IsKind(err, patientstore.ErrSchema):
		body := ErrorBody{Error: string(patientstore.ErrSchema), Message: err.Error()}
		if errors.As(err, &pe) {
			body.Field = pe.Field
			body.Message = pe.Message
		}
		writeJSON(w, http.StatusBadRequest, body)
	default:
		logging.For(r.Context(), s.log).Error("request failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, ErrorBody{Error: "internal"})
	}
}
