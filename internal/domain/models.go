package domain

// QuestionType selects how a question is asked and answered.
type QuestionType string

const (
	// QuestionText is multiple choice with plain text options.
	QuestionText QuestionType = "TEXT"
	// QuestionEmoji is multiple choice where the prompt is an emoji riddle.
	QuestionEmoji QuestionType = "EMOJI"
	// QuestionInput is free text; Options[0] holds the accepted answer.
	QuestionInput QuestionType = "INPUT"
)

// User is one participant record, keyed by ID in the store.
type User struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Phone        string `json:"phone"`
	AvatarID     int    `json:"avatarId"`
	Score        int    `json:"score"`
	IsAdmin      bool   `json:"isAdmin"`
	TripCode     string `json:"tripCode"`
	LastSpinTime int64  `json:"lastSpinTime,omitempty"` // epoch ms, zero until first spin
}

// Valid reports whether a stored record is well-formed enough to display.
func (u User) Valid() bool {
	return u.ID != "" && u.Name != ""
}

// Question is an admin-authored quiz question.
type Question struct {
	ID           string       `json:"id"`
	Text         string       `json:"text"`
	Options      []string     `json:"options"`
	CorrectIndex int          `json:"correctIndex"`
	Type         QuestionType `json:"type"`
	Points       int          `json:"points"`
	Difficulty   string       `json:"difficulty,omitempty"`
	Context      string       `json:"context,omitempty"`
}

// Answer returns the accepted answer text for display.
func (q Question) Answer() string {
	if len(q.Options) == 0 {
		return ""
	}
	if q.Type == QuestionInput {
		return q.Options[0]
	}
	if q.CorrectIndex < 0 || q.CorrectIndex >= len(q.Options) {
		return ""
	}
	return q.Options[q.CorrectIndex]
}

// ActiveQuestion is the singleton record broadcast to every client while a
// round is live. TriggeredAt disambiguates re-sends of the same question id.
type ActiveQuestion struct {
	Question
	TriggeredAt int64 `json:"triggeredAt"` // epoch ms
}

// CommandAlert is the only command kind currently broadcast.
const CommandAlert = "alert"

// AdminCommand is the singleton alert record broadcast by the host.
type AdminCommand struct {
	Text      string `json:"text"`
	Timestamp int64  `json:"timestamp"` // epoch ms
	Kind      string `json:"type"`
}

// AdminMessage is one participant-to-host message. Append-only.
type AdminMessage struct {
	ID         string `json:"id"`
	SenderID   string `json:"senderId"`
	SenderName string `json:"senderName"`
	Text       string `json:"text"`
	Timestamp  int64  `json:"timestamp"` // epoch ms
}

// LeaderboardEntry is a snapshot-friendly view of a participant.
type LeaderboardEntry struct {
	UserID   string `json:"userId"`
	Name     string `json:"name"`
	AvatarID int    `json:"avatarId"`
	Score    int    `json:"score"`
}

// Leaderboard captures the ordered scoreboard for the trip.
type Leaderboard struct {
	Entries   []LeaderboardEntry `json:"entries"`
	UpdatedAt int64              `json:"updatedAt"` // epoch ms
}

// AnswerSubmission models the scoring signal from clients. SelectedIndex is
// used for multiple choice, Text for free-text questions.
type AnswerSubmission struct {
	QuestionID    string `json:"questionId"`
	SelectedIndex int    `json:"selectedIndex"`
	Text          string `json:"text"`
}

// AnswerResult summarizes the outcome of a submission for a single user.
type AnswerResult struct {
	QuestionID   string `json:"questionId"`
	Correct      bool   `json:"correct"`
	CorrectIndex int    `json:"correctIndex"`
	Awarded      int    `json:"awarded"`
	TotalScore   int    `json:"totalScore"`
}

// SpinResult reports one reward-wheel outcome.
type SpinResult struct {
	Label      string `json:"label"`
	Points     int    `json:"points"`
	TotalScore int    `json:"totalScore"`
}
