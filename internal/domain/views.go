package domain

// QuestionView is the public, answer-free rendering of a question.
type QuestionView struct {
	ID              string       `json:"id"`
	Kind            QuestionKind `json:"kind"`
	AudioURL        string       `json:"audioUrl,omitempty"`
	StartSeconds    int          `json:"startSeconds,omitempty"`
	DurationSeconds int          `json:"durationSeconds,omitempty"`
	Prompt          string       `json:"prompt,omitempty"`
	ImageURL        string       `json:"imageUrl,omitempty"`
}

// AttemptState summarises a caller's progress on a question.
type AttemptState struct {
	AttemptsUsed      int  `json:"attemptsUsed"`
	AttemptsRemaining int  `json:"attemptsRemaining"`
	Solved            bool `json:"solved"`
}

// Solution reveals the answer of a finished question.
type Solution struct {
	Date             string       `json:"date"`
	Kind             QuestionKind `json:"kind"`
	Summary          string       `json:"summary"`
	Answer           string       `json:"answer"`
	ContributorName  string       `json:"contributorName,omitempty"`
	ContributorPhoto string       `json:"contributorPhoto,omitempty"`
}

// NextSlot hints when the next quiz is expected.
type NextSlot struct {
	Date    string       `json:"date"`
	Weekday string       `json:"weekday"`
	Kind    QuestionKind `json:"kind"`
}

// CurrentQuiz is the result of looking up the live quiz.
type CurrentQuiz struct {
	Active   bool          `json:"active"`
	Date     string        `json:"date,omitempty"`
	Question *QuestionView `json:"question,omitempty"`
	Attempts *AttemptState `json:"attempts,omitempty"`
	Previous *Solution     `json:"previous,omitempty"`
	Next     *NextSlot     `json:"next,omitempty"`
}

// ArchiveItem is a past quiz available for archive play.
type ArchiveItem struct {
	Date     string       `json:"date"`
	Question QuestionView `json:"question"`
}

// Assignment reports one slot filled by auto-fill.
type Assignment struct {
	Date       string       `json:"date"`
	Kind       QuestionKind `json:"kind"`
	QuestionID string       `json:"questionId"`
}
