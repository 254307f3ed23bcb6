package seeds

import (
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/VotaMatch/VM-Backend/internal/db"
	"github.com/VotaMatch/VM-Backend/internal/match"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// seedCandidate mirrors the layout of candidates.json: one candidate with a
// raw opinion text per topic slug. Paraphrases and embeddings are backfilled
// later by the offline preprocessing commands.
type seedCandidate struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	Party    string    `json:"party"`
	Opinions []struct {
		Topic string `json:"topic"`
		Text  string `json:"text"`
	} `json:"opinions"`
}

func SeedCandidates() error {
	var candidates []seedCandidate

	file, err := os.ReadFile("internal/match/data/candidates.json")
	if err != nil {
		return fmt.Errorf("could not read candidates.json: %w", err)
	}

	if err := json.Unmarshal(file, &candidates); err != nil {
		return fmt.Errorf("failed to parse candidates.json: %w", err)
	}

	var topics []match.Topic
	if err := db.DB.Find(&topics).Error; err != nil {
		return fmt.Errorf("failed to load topics: %w", err)
	}
	topicIDs := make(map[string]uuid.UUID, len(topics))
	for _, t := range topics {
		topicIDs[t.Name] = t.ID
	}

	seededOpinions := 0
	for _, c := range candidates {
		var existing match.Candidate
		err := db.DB.First(&existing, "id = ?", c.ID).Error

		if err == nil {
			log.Printf("⚠️ Candidate exists, skipping: %s", c.Name)
			continue
		} else if err != gorm.ErrRecordNotFound {
			return fmt.Errorf("DB error on candidate %s: %w", c.Name, err)
		}

		candidate := match.Candidate{ID: c.ID, Name: c.Name, Party: c.Party}
		for _, op := range c.Opinions {
			topicID, ok := topicIDs[op.Topic]
			if !ok {
				return fmt.Errorf("candidate %s references unknown topic %s", c.Name, op.Topic)
			}
			candidate.Opinions = append(candidate.Opinions, match.Opinion{
				ID:      uuid.New(),
				TopicID: topicID,
				Text:    op.Text,
			})
		}

		if err := db.DB.Create(&candidate).Error; err != nil {
			return fmt.Errorf("failed to create candidate %s: %w", c.Name, err)
		}
		seededOpinions += len(candidate.Opinions)
	}

	log.Printf("✅ Seeded %d candidates (%d opinions)", len(candidates), seededOpinions)
	return nil
}
