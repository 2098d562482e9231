package domain

// Flashcard is a single front/back study card
type Flashcard struct {
	Front string `json:"front"`
	Back  string `json:"back"`
}

// QuizQuestion is one multiple-choice question of a study guide.
// Options always holds between 2 and 4 entries after sanitation and
// CorrectAnswerIndex is always a valid index into Options.
type QuizQuestion struct {
	Question           string   `json:"question"`
	Options            []string `json:"options"`
	CorrectAnswerIndex int      `json:"correctAnswerIndex"`
	Explanation        string   `json:"explanation"`
}

// LectureAnalysis is the structured study guide produced by the AI service
// for one piece of lecture content. It is produced once and never mutated.
type LectureAnalysis struct {
	Title      string         `json:"title"`
	Summary    string         `json:"summary"` // markdown
	KeyPoints  []string       `json:"keyPoints"`
	Flashcards []Flashcard    `json:"flashcards"`
	Quizzes    []QuizQuestion `json:"quizzes"`
}

// IsEmpty reports whether the analysis carries no usable content at all.
// An analysis with only a title is still considered empty.
func (a *LectureAnalysis) IsEmpty() bool {
	return a.Summary == "" &&
		len(a.KeyPoints) == 0 &&
		len(a.Flashcards) == 0 &&
		len(a.Quizzes) == 0
}

// Validate validates the analysis
func (a *LectureAnalysis) Validate() error {
	if a.IsEmpty() {
		return NewValidationErrorMsg("analysis has no content")
	}
	for _, q := range a.Quizzes {
		if len(q.Options) < 2 {
			return NewValidationErrorMsg("quiz options must hold at least 2 entries")
		}
		if q.CorrectAnswerIndex < 0 || q.CorrectAnswerIndex >= len(q.Options) {
			return NewValidationErrorMsg("quiz correct answer index out of range")
		}
	}
	return nil
}

// NewValidationErrorMsg wraps a plain message into a validation DomainError
func NewValidationErrorMsg(message string) *DomainError {
	return NewError(CodeValidation, message, nil)
}
