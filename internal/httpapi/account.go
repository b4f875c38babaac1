package httpapi

import (
	"errors"
	"net/http"

	"github.com/joblens/joblens/internal/account"
)

type purchaseRequest struct {
	PackageID string `json:"packageId"`
}

type changePlanRequest struct {
	PlanID string `json:"planId"`
}

func (s *Server) handleGetProfile(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, s.account.Profile())
}

func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	var patch account.Profile
	if err := decodeJSON(r, &patch); err != nil && !errors.Is(err, errEmptyBody) {
		respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	respondJSON(w, http.StatusOK, s.account.UpdateProfile(patch))
}

func (s *Server) handleGetSettings(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, s.account.Settings())
}

func (s *Server) handleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	var next account.Settings
	if err := decodeJSON(r, &next); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	respondJSON(w, http.StatusOK, s.account.UpdateSettings(next))
}

func (s *Server) handleGetCredits(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, s.account.Credits())
}

func (s *Server) handlePurchaseCredits(w http.ResponseWriter, r *http.Request) {
	var req purchaseRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	purchase, err := s.account.Purchase(req.PackageID)
	if err != nil {
		respondError(w, http.StatusBadRequest, "unknown_package", err.Error())
		return
	}
	respondJSON(w, http.StatusOK, purchase)
}

func (s *Server) handleGetSubscription(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, s.account.Subscription())
}

func (s *Server) handleChangePlan(w http.ResponseWriter, r *http.Request) {
	var req changePlanRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	sub, err := s.account.ChangePlan(req.PlanID)
	if err != nil {
		respondError(w, http.StatusBadRequest, "unknown_plan", err.Error())
		return
	}
	respondJSON(w, http.StatusOK, sub)
}
