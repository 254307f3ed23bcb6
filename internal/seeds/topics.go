package seeds

import (
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/VotaMatch/VM-Backend/internal/db"
	"github.com/VotaMatch/VM-Backend/internal/match"
	"gorm.io/gorm"
)

func SeedTopics() error {
	var topics []match.Topic

	file, err := os.ReadFile("internal/match/data/topics.json")
	if err != nil {
		return fmt.Errorf("could not read topics.json: %w", err)
	}

	if err := json.Unmarshal(file, &topics); err != nil {
		return fmt.Errorf("failed to parse topics.json: %w", err)
	}

	for _, topic := range topics {
		var existing match.Topic
		err := db.DB.First(&existing, "id = ?", topic.ID).Error

		if err == nil {
			log.Printf("⚠️ Topic exists, skipping: %s", topic.Name)
			continue
		} else if err != gorm.ErrRecordNotFound {
			return fmt.Errorf("DB error on topic %s: %w", topic.Name, err)
		}

		if err := db.DB.Create(&topic).Error; err != nil {
			return fmt.Errorf("failed to create topic %s: %w", topic.Name, err)
		}
	}

	log.Printf("✅ Seeded %d topics", len(topics))
	return nil
}
