package main

import (
	"log"

	"github.com/VotaMatch/VM-Backend/internal/db"
	"github.com/VotaMatch/VM-Backend/internal/match"
	"github.com/VotaMatch/VM-Backend/internal/seeds"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load(".env.local")
	db.Connect()
	match.Init()

	if err := seeds.SeedAll(); err != nil {
		log.Fatalf("❌ Seeding failed: %v", err)
	}
}
