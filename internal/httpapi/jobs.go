package httpapi

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/joblens/joblens/internal/jobs"
)

type setLikedRequest struct {
	Liked bool `json:"liked"`
}

// handleListJobs returns the filtered, sorted listing. Unknown filter or
// sort values are rejected rather than silently coerced.
func (s *Server) handleListJobs(w http.ResponseWriter, r *http.Request) {
	filter, ok := jobs.ParseFilter(r.URL.Query().Get("filter"))
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid_filter", "filter must be one of matched, liked, applied")
		return
	}
	key, ok := jobs.ParseSortKey(r.URL.Query().Get("sort"))
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid_sort", "sort must be one of match, applicants, salary, date")
		return
	}

	all, err := s.jobs.List(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "store_failure", err.Error())
		return
	}
	listed := jobs.Listing(all, filter, key, time.Now().UTC())

	respondJSON(w, http.StatusOK, map[string]any{
		"jobs":   listed,
		"count":  len(listed),
		"filter": filter,
		"sort":   key,
	})
}

func (s *Server) lookupJobID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := strings.TrimSpace(chi.URLParam(r, "id"))
	if id == "" {
		respondError(w, http.StatusBadRequest, "invalid_job_id", "missing job id")
		return "", false
	}
	return id, true
}

func (s *Server) handleGetJob(w http.ResponseWriter, r *http.Request) {
	id, ok := s.lookupJobID(w, r)
	if !ok {
		return
	}
	job, err := s.jobs.Get(r.Context(), id)
	if err != nil {
		s.respondJobError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, job)
}

func (s *Server) handleSetLiked(w http.ResponseWriter, r *http.Request) {
	id, ok := s.lookupJobID(w, r)
	if !ok {
		return
	}
	var req setLikedRequest
	if err := decodeJSON(r, &req); err != nil && !errors.Is(err, errEmptyBody) {
		respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	job, err := s.jobs.SetLiked(r.Context(), id, req.Liked)
	if err != nil {
		s.respondJobError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, job)
}

// handleApplyJob marks a posting applied. Applying twice is harmless.
func (s *Server) handleApplyJob(w http.ResponseWriter, r *http.Request) {
	id, ok := s.lookupJobID(w, r)
	if !ok {
		return
	}
	job, err := s.jobs.SetApplied(r.Context(), id)
	if err != nil {
		s.respondJobError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, job)
}

func (s *Server) respondJobError(w http.ResponseWriter, err error) {
	if errors.Is(err, jobs.ErrNotFound) {
		respondError(w, http.StatusNotFound, "job_not_found", err.Error())
		return
	}
	respondError(w, http.StatusInternalServerError, "store_failure", err.Error())
}
