package http

import (
	"net/http"

	"weekly-quiz-service/internal/app"
	"weekly-quiz-service/internal/auth"
	"weekly-quiz-service/internal/domain"
)

type submitRequest struct {
	Type            string   `json:"type"`
	SourceURL       string   `json:"sourceUrl"`
	StartSeconds    int      `json:"startSeconds"`
	DurationSeconds int      `json:"durationSeconds"`
	Artists         []string `json:"artists"`
	Tracks          []string `json:"tracks"`
	Prompt          string   `json:"prompt"`
	ImageURL        string   `json:"imageUrl"`
	Answers         []string `json:"answers"`
	Secret          string   `json:"secret"`
}

type moderateRequest struct {
	QuestionID string `json:"questionId"`
	Action     string `json:"action"`
	Secret     string `json:"secret"`
}

func (a *API) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if err := decodeJSON(r, &req); err != nil {
		a.writeError(w, r, err)
		return
	}
	var loginID string
	if claims := auth.FromContext(r.Context()); claims != nil {
		loginID = claims.UserID()
	}
	q, err := a.svc.Questions.Submit(r.Context(), app.SubmitRequest{
		Kind:            req.Type,
		SourceURL:       req.SourceURL,
		StartSeconds:    req.StartSeconds,
		DurationSeconds: req.DurationSeconds,
		Artists:         req.Artists,
		Tracks:          req.Tracks,
		Prompt:          req.Prompt,
		ImageURL:        req.ImageURL,
		Answers:         req.Answers,
		Secret:          req.Secret,
		LoginID:         loginID,
	})
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	a.writeData(w, http.StatusCreated, map[string]any{"id": q.ID, "status": q.Status})
}

func (a *API) handleListQuestions(w http.ResponseWriter, r *http.Request) {
	filter := domain.QuestionFilter(r.URL.Query().Get("filter"))
	list, err := a.svc.Questions.List(r.Context(), r.URL.Query().Get("secret"), filter)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	a.writeData(w, http.StatusOK, list)
}

func (a *API) handleModerate(w http.ResponseWriter, r *http.Request) {
	var req moderateRequest
	if err := decodeJSON(r, &req); err != nil {
		a.writeError(w, r, err)
		return
	}
	if err := a.svc.Questions.Moderate(r.Context(), req.Secret, req.QuestionID, app.ModerationAction(req.Action)); err != nil {
		a.writeError(w, r, err)
		return
	}
	a.writeData(w, http.StatusOK, map[string]string{"questionId": req.QuestionID, "action": req.Action})
}
