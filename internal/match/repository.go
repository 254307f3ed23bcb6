package match

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository is the narrow persistence surface the matching core depends on.
// The selector and scorer only ever see this interface; the concrete storage
// lives behind it.
type Repository interface {
	AllTopics() ([]Topic, error)
	TopicsByNames(names []string) ([]Topic, error)
	SelectedTopicIDs(userID string) ([]uuid.UUID, error)
	ReplaceSelectedTopics(userID string, topicIDs []uuid.UUID) error

	OpinionByID(id uuid.UUID) (*Opinion, error)
	// AnsweredOpinions returns the opinions the user has already answered,
	// embeddings included.
	AnsweredOpinions(userID string) ([]Opinion, error)
	// OpinionPool returns the opinions in the given topics excluding the given
	// opinion ids, with their Topic association populated.
	OpinionPool(topicIDs, exclude []uuid.UUID) ([]Opinion, error)
	// TopicOpinions returns every opinion on the topic that has an embedding,
	// across all candidates.
	TopicOpinions(topicID uuid.UUID) ([]Opinion, error)

	HasAnswer(userID string, opinionID uuid.UUID) (bool, error)
	InsertAnswer(a *Answer) error
	AnswerCount(userID string) (int64, error)
	AnswerHistory(userID string) ([]AnsweredStatement, error)

	// LedgerScores reads the user's current score for each candidate id;
	// absent entries are simply missing from the map.
	LedgerScores(userID string, candidateIDs []uuid.UUID) (map[uuid.UUID]float64, error)
	UpsertLedger(entries []UserMatch) error
	// Ledger returns every ledger entry for the user joined with candidate
	// identity.
	Ledger(userID string) ([]LedgerRow, error)
}

type gormRepository struct {
	db *gorm.DB
}

// NewRepository wraps a gorm connection in the Repository interface.
func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) AllTopics() ([]Topic, error) {
	var topics []Topic
	if err := r.db.Order("name").Find(&topics).Error; err != nil {
		return nil, fmt.Errorf("failed to load topics: %w", err)
	}
	return topics, nil
}

func (r *gormRepository) TopicsByNames(names []string) ([]Topic, error) {
	var topics []Topic
	if err := r.db.Where("name IN ?", names).Find(&topics).Error; err != nil {
		return nil, fmt.Errorf("failed to load topics by name: %w", err)
	}
	return topics, nil
}

func (r *gormRepository) SelectedTopicIDs(userID string) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.Model(&UserTopic{}).
		Where("user_id = ?", userID).
		Pluck("topic_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load selected topics: %w", err)
	}
	return ids, nil
}

func (r *gormRepository) ReplaceSelectedTopics(userID string, topicIDs []uuid.UUID) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", userID).Delete(&UserTopic{}).Error; err != nil {
			return fmt.Errorf("failed to clear selected topics: %w", err)
		}
		for _, id := range topicIDs {
			if err := tx.Create(&UserTopic{UserID: userID, TopicID: id}).Error; err != nil {
				return fmt.Errorf("failed to save selected topic: %w", err)
			}
		}
		return nil
	})
}

func (r *gormRepository) OpinionByID(id uuid.UUID) (*Opinion, error) {
	var opinion Opinion
	err := r.db.Preload("Topic").First(&opinion, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrOpinionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load opinion: %w", err)
	}
	return &opinion, nil
}

func (r *gormRepository) AnsweredOpinions(userID string) ([]Opinion, error) {
	var opinions []Opinion
	err := r.db.
		Where("id IN (?)", r.db.Model(&Answer{}).
			Select("opinion_id").
			Where("user_id = ?", userID)).
		Find(&opinions).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load answered opinions: %w", err)
	}
	return opinions, nil
}

func (r *gormRepository) OpinionPool(topicIDs, exclude []uuid.UUID) ([]Opinion, error) {
	q := r.db.Preload("Topic").Where("topic_id IN ?", topicIDs)
	if len(exclude) > 0 {
		q = q.Where("id NOT IN ?", exclude)
	}
	var opinions []Opinion
	if err := q.Find(&opinions).Error; err != nil {
		return nil, fmt.Errorf("failed to load opinion pool: %w", err)
	}
	return opinions, nil
}

func (r *gormRepository) TopicOpinions(topicID uuid.UUID) ([]Opinion, error) {
	var opinions []Opinion
	err := r.db.
		Where("topic_id = ?", topicID).
		Where("embedding IS NOT NULL").
		Find(&opinions).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load topic opinions: %w", err)
	}
	return opinions, nil
}

func (r *gormRepository) HasAnswer(userID string, opinionID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.Model(&Answer{}).
		Where("user_id = ? AND opinion_id = ?", userID, opinionID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check for existing answer: %w", err)
	}
	return count > 0, nil
}

func (r *gormRepository) InsertAnswer(a *Answer) error {
	if err := r.db.Create(a).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrAlreadyAnswered
		}
		return fmt.Errorf("failed to save answer: %w", err)
	}
	return nil
}

func (r *gormRepository) AnswerCount(userID string) (int64, error) {
	var count int64
	err := r.db.Model(&Answer{}).Where("user_id = ?", userID).Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count answers: %w", err)
	}
	return count, nil
}

func (r *gormRepository) AnswerHistory(userID string) ([]AnsweredStatement, error) {
	var history []AnsweredStatement
	err := r.db.Table("match.answers").
		Select(`match.topics.name AS topic_name,
			COALESCE(NULLIF(match.opinions.paraphrase, ''), match.opinions.text) AS statement,
			match.answers.agree AS agree`).
		Joins("JOIN match.opinions ON match.opinions.id = match.answers.opinion_id").
		Joins("JOIN match.topics ON match.topics.id = match.opinions.topic_id").
		Where("match.answers.user_id = ?", userID).
		Order("match.answers.created_at ASC").
		Scan(&history).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load answer history: %w", err)
	}
	return history, nil
}

func (r *gormRepository) LedgerScores(userID string, candidateIDs []uuid.UUID) (map[uuid.UUID]float64, error) {
	var entries []UserMatch
	err := r.db.
		Where("user_id = ? AND candidate_id IN ?", userID, candidateIDs).
		Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("failed to read ledger: %w", err)
	}

	scores := make(map[uuid.UUID]float64, len(entries))
	for _, e := range entries {
		scores[e.CandidateID] = e.Score
	}
	return scores, nil
}

func (r *gormRepository) UpsertLedger(entries []UserMatch) error {
	if len(entries) == 0 {
		return nil
	}
	err := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "candidate_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"score"}),
	}).Create(&entries).Error
	if err != nil {
		return fmt.Errorf("failed to upsert ledger: %w", err)
	}
	return nil
}

func (r *gormRepository) Ledger(userID string) ([]LedgerRow, error) {
	var rows []LedgerRow
	err := r.db.Table("match.user_matches").
		Select(`match.user_matches.candidate_id AS candidate_id,
			match.candidates.name AS name,
			match.candidates.party AS party,
			match.user_matches.score AS score`).
		Joins("JOIN match.candidates ON match.candidates.id = match.user_matches.candidate_id").
		Where("match.user_matches.user_id = ?", userID).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to read ledger: %w", err)
	}
	return rows, nil
}
