package match

import (
	"log"

	"github.com/VotaMatch/VM-Backend/internal/db"
)

func Init() {
	// Ensure the match schema exists first
	if err := db.EnsureSchema(db.DB, "match"); err != nil {
		log.Fatal("Failed to create match schema: ", err)
	}

	if err := db.DB.AutoMigrate(&Topic{}, &Candidate{}, &Opinion{}, &UserTopic{}, &Answer{}, &UserMatch{}); err != nil {
		log.Fatal("Failed to auto-migrate tables", err)
	}
}
