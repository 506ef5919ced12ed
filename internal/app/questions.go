package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"weekly-quiz-service/internal/domain"
)

const (
	listPageSize           = 100
	defaultSnippetDuration = 10
)

// SubmitRequest is a question submission from a contributor or an admin.
type SubmitRequest struct {
	Kind            string
	SourceURL       string
	StartSeconds    int
	DurationSeconds int
	Artists         []string
	Tracks          []string
	Prompt          string
	ImageURL        string
	Answers         []string

	// Secret is the optional admin secret; LoginID the optional authenticated login.
	Secret  string
	LoginID string
}

type snippetPayload struct {
	SourceURL       string   `validate:"required"`
	StartSeconds    int      `validate:"gte=0"`
	DurationSeconds int      `validate:"gte=1,lte=120"`
	Artists         []string `validate:"min=1"`
	Tracks          []string `validate:"min=1"`
}

type triviaPayload struct {
	Prompt   string   `validate:"required"`
	ImageURL string   `validate:"omitempty,url"`
	Answers  []string `validate:"min=1"`
}

// ModerationAction is approve, reject or delete.
type ModerationAction string

const (
	ActionApprove ModerationAction = "approve"
	ActionReject  ModerationAction = "reject"
	ActionDelete  ModerationAction = "delete"
)

// QuestionService implements submission and moderation.
type QuestionService struct {
	questions    QuestionRepository
	contributors ContributorRepository
	answerKeys   AnswerKeys
	admin        AdminGate
	clock        Clock
	validate     *validator.Validate
	newID        func() string
	log          *logrus.Entry
}

func NewQuestionService(questions QuestionRepository, contributors ContributorRepository, answerKeys AnswerKeys, admin AdminGate, clock Clock, log *logrus.Entry) *QuestionService {
	return &QuestionService{
		questions:    questions,
		contributors: contributors,
		answerKeys:   answerKeys,
		admin:        admin,
		clock:        clock,
		validate:     validator.New(),
		newID:        newID,
		log:          log,
	}
}

// Submit validates and stores a question. Admin submissions skip moderation.
func (s *QuestionService) Submit(ctx context.Context, req SubmitRequest) (domain.Question, error) {
	q, err := s.buildQuestion(req)
	if err != nil {
		return domain.Question{}, err
	}

	isAdmin := s.admin.Is(req.Secret)
	if req.LoginID != "" {
		c, err := s.contributors.GetContributorByLogin(ctx, req.LoginID)
		switch {
		case err == nil && c.IsActive:
			q.ContributorID = c.ID
		case err == nil && !isAdmin:
			return domain.Question{}, domain.ErrContributorInactive
		case err != nil && !errors.Is(err, domain.ErrContributorNotFound):
			return domain.Question{}, err
		}
	}
	if !isAdmin && q.ContributorID == "" {
		return domain.Question{}, domain.ErrUnauthorized
	}

	now := s.clock.Now()
	q.ID = s.newID()
	q.CreatedAt = now
	q.Status = domain.StatusPending
	if isAdmin {
		q.Status = domain.StatusApproved
		q.ApprovedAt = &now
	}
	if err := s.questions.CreateQuestion(ctx, q); err != nil {
		return domain.Question{}, err
	}
	s.log.WithFields(logrus.Fields{
		"question_id": q.ID,
		"kind":        q.Kind,
		"status":      q.Status,
		"contributor": q.ContributorID,
	}).Info("question submitted")
	return q, nil
}

func (s *QuestionService) buildQuestion(req SubmitRequest) (domain.Question, error) {
	kind := domain.QuestionKind(strings.ToLower(strings.TrimSpace(req.Kind)))
	if !kind.Valid() {
		return domain.Question{}, domain.ErrInvalidType
	}

	switch kind {
	case domain.KindSnippet:
		p := snippetPayload{
			SourceURL:       strings.TrimSpace(req.SourceURL),
			StartSeconds:    req.StartSeconds,
			DurationSeconds: req.DurationSeconds,
			Artists:         cleanVariants(req.Artists),
			Tracks:          cleanVariants(req.Tracks),
		}
		if p.DurationSeconds == 0 {
			p.DurationSeconds = defaultSnippetDuration
		}
		if err := s.check(p); err != nil {
			return domain.Question{}, err
		}
		return domain.Question{
			Kind:            kind,
			SourceURL:       p.SourceURL,
			StartSeconds:    p.StartSeconds,
			DurationSeconds: p.DurationSeconds,
			ArtistAnswers:   p.Artists,
			TrackAnswers:    p.Tracks,
		}, nil
	default:
		p := triviaPayload{
			Prompt:   strings.TrimSpace(req.Prompt),
			ImageURL: strings.TrimSpace(req.ImageURL),
			Answers:  cleanVariants(req.Answers),
		}
		if err := s.check(p); err != nil {
			return domain.Question{}, err
		}
		return domain.Question{
			Kind:     kind,
			Prompt:   p.Prompt,
			ImageURL: p.ImageURL,
			Answers:  p.Answers,
		}, nil
	}
}

// check maps validator failures onto the two validation codes clients know.
func (s *QuestionService) check(payload any) error {
	err := s.validate.Struct(payload)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validate question: %w", err)
	}
	for _, fe := range verrs {
		if fe.Tag() == "required" || fe.Tag() == "min" {
			return domain.ErrMissingFields
		}
	}
	return domain.ErrInvalidFields
}

// Moderate approves, rejects or deletes a question.
func (s *QuestionService) Moderate(ctx context.Context, secret, questionID string, action ModerationAction) error {
	if err := s.admin.Check(secret); err != nil {
		return err
	}
	if strings.TrimSpace(questionID) == "" || action == "" {
		return domain.ErrMissingFields
	}

	var err error
	switch action {
	case ActionApprove:
		now := s.clock.Now()
		err = s.questions.SetQuestionStatus(ctx, questionID, domain.StatusApproved, &now)
	case ActionReject:
		err = s.questions.SetQuestionStatus(ctx, questionID, domain.StatusRejected, nil)
	case ActionDelete:
		err = s.questions.DeleteQuestion(ctx, questionID)
	default:
		return domain.ErrInvalidAction
	}
	if err != nil {
		return err
	}
	if err := s.answerKeys.Invalidate(ctx, questionID); err != nil {
		s.log.WithError(err).WithField("question_id", questionID).Warn("answer key invalidation failed")
	}
	s.log.WithFields(logrus.Fields{"question_id": questionID, "action": action}).Info("question moderated")
	return nil
}

// List returns questions matching filter, newest first.
func (s *QuestionService) List(ctx context.Context, secret string, filter domain.QuestionFilter) ([]domain.QuestionListing, error) {
	if err := s.admin.Check(secret); err != nil {
		return nil, err
	}
	switch filter {
	case "":
		filter = domain.FilterAll
	case domain.FilterPending, domain.FilterApproved, domain.FilterRejected, domain.FilterAll:
	default:
		return nil, domain.ErrInvalidFields
	}
	return s.questions.ListQuestions(ctx, filter, listPageSize)
}

func cleanVariants(in []string) []string {
	out := make([]string, 0, len(in))
	for _, v := range in {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
