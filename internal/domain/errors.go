package domain

// Kind classifies a domain error for transport mapping.
type Kind int

const (
	KindValidation Kind = iota + 1
	KindUnauthorized
	KindNotFound
	KindConflict
	KindUpstream
)

// Error is a domain failure with a stable machine-readable code.
// Clients branch on Code, so codes are part of the public contract.
type Error struct {
	Code    string
	Kind    Kind
	Message string
}

func (e *Error) Error() string { return e.Message }

func newError(kind Kind, code, msg string) *Error {
	return &Error{Code: code, Kind: kind, Message: msg}
}

var (
	// ErrInvalidType is returned when a question kind is neither snippet nor trivia.
	ErrInvalidType = newError(KindValidation, "invalid_type", "question type must be snippet or trivia")
	// ErrMissingFields is returned when required fields are absent.
	ErrMissingFields = newError(KindValidation, "missing_fields", "required fields are missing")
	// ErrInvalidFields is returned when present fields are out of range.
	ErrInvalidFields = newError(KindValidation, "invalid_fields", "fields are out of range")
	// ErrInvalidAction indicates an unknown moderation action.
	ErrInvalidAction = newError(KindValidation, "invalid_action", "action must be approve, reject or delete")
	// ErrInvalidID indicates an audio reference that does not decode to a media id.
	ErrInvalidID = newError(KindValidation, "invalid_id", "invalid audio reference")
	// ErrInvalidStart indicates a malformed audio start offset.
	ErrInvalidStart = newError(KindValidation, "invalid_start", "start must be a non-negative integer")

	// ErrUnauthorized covers a bad admin secret and missing login identity.
	ErrUnauthorized = newError(KindUnauthorized, "unauthorized", "unauthorized")

	// ErrQuestionNotFound indicates an unknown or unplayable question.
	ErrQuestionNotFound = newError(KindNotFound, "question_not_found", "question not found")
	// ErrContributorNotFound indicates an unknown contributor id or login.
	ErrContributorNotFound = newError(KindNotFound, "contributor_not_found", "contributor not found")
	// ErrScheduleNotFound indicates there is no schedule entry for the lookup.
	ErrScheduleNotFound = newError(KindNotFound, "schedule_not_found", "schedule entry not found")

	ErrAlreadyCorrect      = newError(KindConflict, "already_correct", "question already answered correctly")
	ErrMaxAttemptsReached  = newError(KindConflict, "max_attempts_reached", "no attempts left for this question")
	ErrNoCorrectAttempt    = newError(KindConflict, "no_correct_attempt_found", "no correct attempt found for this question")
	ErrScoreAlreadySaved   = newError(KindConflict, "score_already_saved", "score already saved")
	ErrInvalidInviteCode   = newError(KindConflict, "invalid_invite_code", "invite code not recognised")
	ErrInviteDeactivated   = newError(KindConflict, "invite_deactivated", "invite has been deactivated")
	ErrInviteAlreadyUsed   = newError(KindConflict, "invite_already_used", "invite already used by another account")
	ErrLoginAlreadyBound   = newError(KindConflict, "login_already_registered", "account already registered with another invite")
	ErrQuestionNotPending  = newError(KindConflict, "question_not_pending", "only pending questions can be approved or rejected")
	ErrContributorInactive = newError(KindConflict, "contributor_inactive", "contributor is not active")

	// ErrUpstream indicates the media platform could not serve the audio.
	ErrUpstream = newError(KindUpstream, "upstream_error", "audio source unavailable")
)
