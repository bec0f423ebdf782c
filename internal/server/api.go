package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/attribute"

	apperrors "github.com/vango-dev/atom/internal/errors"
	"github.com/vango-dev/atom/pkg/bind"
	"github.com/vango-dev/atom/pkg/form"
)

// maxBodyBytes bounds PUT request bodies.
const maxBodyBytes = 64 << 10

// fieldsResponse is the body of GET /api/fields.
type fieldsResponse struct {
	Count  int         `json:"count"`
	Filled int         `json:"filled"`
	Fields form.Fields `json:"fields"`
}

// pairResponse is the body of a successful PUT.
type pairResponse struct {
	Index int `json:"index"`
	form.Pair
}

type putFieldRequest struct {
	Value *string `json:"value"`
}

type errorResponse struct {
	Error *apperrors.Error `json:"error"`
}

func (s *Server) handleListFields(w http.ResponseWriter, r *http.Request) {
	fields := bind.BindValue(bind.Static[form.Fields](), s.fields)
	s.writeJSON(w, http.StatusOK, fieldsResponse{
		Count:  form.Count(fields),
		Filled: form.Filled(fields),
		Fields: fields,
	})
}

func (s *Server) handlePutField(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		s.writeError(w, r, apperrors.New("E301").WithDetail("index must be an integer"))
		return
	}
	side, err := form.ParseSide(chi.URLParam(r, "side"))
	if err != nil {
		s.writeError(w, r, apperrors.New("E302").Wrap(err))
		return
	}

	var req putFieldRequest
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err == nil {
		err = json.Unmarshal(body, &req)
	}
	if err == nil && req.Value == nil {
		err = errors.New(`missing "value"`)
	}
	if err != nil {
		s.writeError(w, r, apperrors.New("E303").WithDetail(err.Error()))
		return
	}

	edit := form.Edit{Index: index, Side: side, Value: *req.Value}
	var pair form.Pair
	err = s.loop.Do(r.Context(), func() error {
		return s.traceEdit(r.Context(), "api", func() error {
			if err := s.fields.TryUpdate(edit.Apply); err != nil {
				return err
			}
			pair = s.fields.Get()[index]
			return nil
		}, attribute.Int("atomdemo.index", index), attribute.String("atomdemo.side", string(side)))
	})
	if s.metrics != nil {
		s.metrics.RecordEvent("put", err)
	}
	if err != nil {
		s.writeError(w, r, editError(err))
		return
	}

	s.logger.Debug("field updated", "field", side.Label(index), "source", "api")
	s.writeJSON(w, http.StatusOK, pairResponse{Index: index, Pair: pair})
}

// editError maps a failed edit to a coded error.
func editError(err error) *apperrors.Error {
	switch {
	case errors.Is(err, form.ErrIndexOutOfRange):
		return apperrors.New("E301").Wrap(err).WithDetail(err.Error())
	case errors.Is(err, form.ErrUnknownSide):
		return apperrors.New("E302").Wrap(err)
	case errors.Is(err, form.ErrUnknownTarget):
		return apperrors.New("E202").Wrap(err)
	}
	return apperrors.FromError(err, "E204")
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, e *apperrors.Error) {
	s.logger.Warn("request failed", "path", r.URL.Path, "error", e.Error())
	s.writeJSON(w, e.HTTPStatus(), errorResponse{Error: e})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Debug("response write failed", "status", status, "error", err)
	}
}
