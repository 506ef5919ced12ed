package http

import (
	"net/http"
	"strings"

	"weekly-quiz-service/internal/app"
	"weekly-quiz-service/internal/auth"
	"weekly-quiz-service/internal/domain"
)

const defaultArchiveLimit = 50

type guessRequest struct {
	QuestionID string `json:"questionId"`
	Artist     string `json:"artist"`
	Track      string `json:"track"`
	Answer     string `json:"answer"`
}

type scoreRequest struct {
	QuestionID  string `json:"questionId"`
	DisplayName string `json:"displayName"`
	PhotoURL    string `json:"photoUrl"`
	Archive     bool   `json:"archive"`
}

func (a *API) handleCurrent(w http.ResponseWriter, r *http.Request) {
	current, err := a.svc.Scheduler.Current(r.Context(), callerIdentity(r))
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	a.writeData(w, http.StatusOK, current)
}

func (a *API) handleArchive(w http.ResponseWriter, r *http.Request) {
	limit, err := parseIntParam(r, "limit", defaultArchiveLimit)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	items, err := a.svc.Scheduler.Archive(r.Context(), limit)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	a.writeData(w, http.StatusOK, items)
}

func (a *API) handleGuess(w http.ResponseWriter, r *http.Request) {
	var req guessRequest
	if err := decodeJSON(r, &req); err != nil {
		a.writeError(w, r, err)
		return
	}
	res, err := a.svc.Attempts.Guess(r.Context(), req.QuestionID, callerIdentity(r), domain.Guess{
		Artist: req.Artist,
		Track:  req.Track,
		Answer: req.Answer,
	})
	a.countGuess(res, err)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	a.writeData(w, http.StatusOK, res)
}

func (a *API) countGuess(res domain.GuessResult, err error) {
	if a.metrics == nil {
		return
	}
	outcome := "incorrect"
	switch {
	case err != nil:
		status, code, _ := statusFor(err)
		if status == http.StatusInternalServerError {
			return
		}
		outcome = code
	case res.IsCorrect:
		outcome = "correct"
	}
	a.metrics.Guesses.WithLabelValues(outcome).Inc()
}

func (a *API) handleScore(w http.ResponseWriter, r *http.Request) {
	claims := auth.FromContext(r.Context())
	if claims == nil {
		a.writeError(w, r, domain.ErrUnauthorized)
		return
	}
	var req scoreRequest
	if err := decodeJSON(r, &req); err != nil {
		a.writeError(w, r, err)
		return
	}
	name := strings.TrimSpace(req.DisplayName)
	if name == "" {
		name = claims.Name
	}
	photo := req.PhotoURL
	if photo == "" {
		photo = claims.Picture
	}
	score, err := a.svc.Attempts.RecordScore(r.Context(), app.ScoreRequest{
		QuestionID:     req.QuestionID,
		CallerIdentity: callerIdentity(r),
		UserID:         claims.UserID(),
		DisplayName:    name,
		PhotoURL:       photo,
		ArchiveMode:    req.Archive,
	})
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	if a.metrics != nil {
		mode := "live"
		if score.IsArchive {
			mode = "archive"
		}
		a.metrics.ScoresSaved.WithLabelValues(mode).Inc()
	}
	a.writeData(w, http.StatusOK, score)
}

func (a *API) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	limit, err := parseIntParam(r, "limit", app.MaxLeaderboardSize)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	lb, err := a.svc.Leaderboard.Compute(r.Context(), limit)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	a.writeData(w, http.StatusOK, lb)
}
