package match

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

type Topic struct {
	ID    uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name  string    `gorm:"uniqueIndex" json:"name"`
	Emoji string    `json:"emoji"`
}

type Candidate struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name     string    `gorm:"uniqueIndex" json:"name"`
	Party    string    `json:"party"`
	Opinions []Opinion `gorm:"foreignKey:CandidateID" json:"opinions,omitempty"`
}

// Opinion is one candidate's stated position on one topic. Paraphrase is a
// neutral restatement of Text shown to users so phrasing cannot reveal the
// source candidate; Embedding is a pre-computed vector over the paraphrase.
// Opinions without an embedding are excluded from matching.
type Opinion struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	CandidateID uuid.UUID       `gorm:"type:uuid;index" json:"candidate_id"`
	TopicID     uuid.UUID       `gorm:"type:uuid;index" json:"topic_id"`
	Text        string          `json:"text"`
	Paraphrase  *string         `json:"paraphrase"`
	Embedding   pq.Float64Array `gorm:"type:float8[]" json:"embedding,omitempty"`
	Topic       Topic           `gorm:"foreignKey:TopicID" json:"-"`
}

type UserTopic struct {
	UserID  string    `gorm:"primaryKey" json:"user_id"`
	TopicID uuid.UUID `gorm:"type:uuid;primaryKey" json:"topic_id"`
}

// Answer is an append-only event: one user's agree/disagree on one opinion.
// The unique (user_id, opinion_id) index rejects double submission.
type Answer struct {
	ID        string    `gorm:"primaryKey" json:"id"`
	UserID    string    `gorm:"uniqueIndex:idx_answers_user_opinion" json:"user_id"`
	OpinionID uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_answers_user_opinion" json:"opinion_id"`
	Agree     bool      `json:"agree"`
	CreatedAt time.Time `json:"created_at"`
}

// UserMatch is the per-user, per-candidate score ledger. Scores accumulate
// additively; the answer log is the source of truth and the ledger can be
// rebuilt from it by replaying answers in order.
type UserMatch struct {
	UserID      string    `gorm:"primaryKey" json:"user_id"`
	CandidateID uuid.UUID `gorm:"type:uuid;primaryKey" json:"candidate_id"`
	Score       float64   `json:"score"`
}

func (Topic) TableName() string {
	return "match.topics"
}

func (Candidate) TableName() string {
	return "match.candidates"
}

func (Opinion) TableName() string {
	return "match.opinions"
}

func (UserTopic) TableName() string {
	return "match.user_topics"
}

func (Answer) TableName() string {
	return "match.answers"
}

func (UserMatch) TableName() string {
	return "match.user_matches"
}

// Statement returns the text shown to users: the neutral paraphrase when the
// preprocessing step has produced one, the raw opinion text otherwise.
func (o Opinion) Statement() string {
	if o.Paraphrase != nil && *o.Paraphrase != "" {
		return *o.Paraphrase
	}
	return o.Text
}

// HasEmbedding reports whether the opinion can participate in matching.
func (o Opinion) HasEmbedding() bool {
	return len(o.Embedding) > 0
}

// Question is what the selector emits: an opinion stripped of candidate
// identity.
type Question struct {
	QuestionID uuid.UUID `json:"question_id"`
	Topic      string    `json:"topic"`
	Statement  string    `json:"statement"`
}

// CandidateScore is one ranked entry returned to callers.
type CandidateScore struct {
	CandidateName   string  `json:"candidate_name"`
	Party           string  `json:"party"`
	Score           float64 `json:"score"`
	MatchPercentage int     `json:"match_percentage"`
}

// LedgerRow is a ledger entry joined with candidate identity.
type LedgerRow struct {
	CandidateID uuid.UUID
	Name        string
	Party       string
	Score       float64
}

// AnsweredStatement is one entry of a user's answer history, joined with the
// statement and topic it was about. Used for the preferences summary.
type AnsweredStatement struct {
	TopicName string
	Statement string
	Agree     bool
}
