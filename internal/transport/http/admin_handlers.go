package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"weekly-quiz-service/internal/auth"
	"weekly-quiz-service/internal/domain"
)

type secretRequest struct {
	Secret string `json:"secret"`
}

type autoFillRequest struct {
	Secret      string `json:"secret"`
	HorizonDays int    `json:"horizonDays"`
}

type inviteRequest struct {
	Secret string `json:"secret"`
	Name   string `json:"name"`
}

type setActiveRequest struct {
	Secret string `json:"secret"`
	Active *bool  `json:"active"`
}

type registerRequest struct {
	InviteCode string `json:"inviteCode"`
}

func (a *API) handleListSchedule(w http.ResponseWriter, r *http.Request) {
	entries, err := a.svc.Scheduler.Upcoming(r.Context(), r.URL.Query().Get("secret"))
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	a.writeData(w, http.StatusOK, entries)
}

func (a *API) handleAutoFill(w http.ResponseWriter, r *http.Request) {
	var req autoFillRequest
	if err := decodeJSON(r, &req); err != nil {
		a.writeError(w, r, err)
		return
	}
	assignments, err := a.svc.Scheduler.AdminAutoFill(r.Context(), req.Secret, req.HorizonDays)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	a.writeData(w, http.StatusOK, map[string]any{"scheduled": assignments})
}

func (a *API) handleActivate(w http.ResponseWriter, r *http.Request) {
	var req secretRequest
	if err := decodeJSON(r, &req); err != nil {
		a.writeError(w, r, err)
		return
	}
	activated, err := a.svc.Scheduler.AdminActivateToday(r.Context(), req.Secret)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	a.writeData(w, http.StatusOK, map[string]bool{"activated": activated})
}

func (a *API) handleListContributors(w http.ResponseWriter, r *http.Request) {
	list, err := a.svc.Contributors.List(r.Context(), r.URL.Query().Get("secret"))
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	a.writeData(w, http.StatusOK, list)
}

func (a *API) handleCreateInvite(w http.ResponseWriter, r *http.Request) {
	var req inviteRequest
	if err := decodeJSON(r, &req); err != nil {
		a.writeError(w, r, err)
		return
	}
	c, err := a.svc.Contributors.CreateInvite(r.Context(), req.Secret, req.Name)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	a.writeData(w, http.StatusCreated, c)
}

func (a *API) handleSetContributorActive(w http.ResponseWriter, r *http.Request) {
	var req setActiveRequest
	if err := decodeJSON(r, &req); err != nil {
		a.writeError(w, r, err)
		return
	}
	if req.Active == nil {
		a.writeError(w, r, domain.ErrMissingFields)
		return
	}
	id := chi.URLParam(r, "id")
	if err := a.svc.Contributors.SetActive(r.Context(), req.Secret, id, *req.Active); err != nil {
		a.writeError(w, r, err)
		return
	}
	a.writeData(w, http.StatusOK, map[string]any{"id": id, "isActive": *req.Active})
}

func (a *API) handleDeleteContributor(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := a.svc.Contributors.Delete(r.Context(), r.URL.Query().Get("secret"), id); err != nil {
		a.writeError(w, r, err)
		return
	}
	a.writeData(w, http.StatusOK, map[string]string{"id": id})
}

func (a *API) handleContributorMe(w http.ResponseWriter, r *http.Request) {
	claims := auth.FromContext(r.Context())
	if claims == nil {
		a.writeError(w, r, domain.ErrUnauthorized)
		return
	}
	c, err := a.svc.Contributors.Me(r.Context(), claims.UserID())
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	a.writeData(w, http.StatusOK, c)
}

func (a *API) handleRegister(w http.ResponseWriter, r *http.Request) {
	claims := auth.FromContext(r.Context())
	if claims == nil {
		a.writeError(w, r, domain.ErrUnauthorized)
		return
	}
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		a.writeError(w, r, err)
		return
	}
	reg, err := a.svc.Contributors.Register(r.Context(), req.InviteCode, claims.UserID(), claims.Name, claims.Picture)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	a.writeData(w, http.StatusOK, reg)
}
