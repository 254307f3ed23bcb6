package main

import (
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/VotaMatch/VM-Backend/internal/db"
	"github.com/VotaMatch/VM-Backend/internal/embedding"
	"github.com/VotaMatch/VM-Backend/internal/match"
	"github.com/VotaMatch/VM-Backend/internal/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"
)

func RootHandler(w http.ResponseWriter, r *http.Request) {
	response := "Server is up!"
	w.Header().Set("Content-Type", "text/plain")
	fmt.Fprintln(w, response)
}

func main() {
	_ = godotenv.Load(".env.local")
	db.Connect()

	port := os.Getenv("PORT")
	if port == "" {
		port = "5050"
	}

	match.Init()

	cfg, err := match.LoadConfig()
	if err != nil {
		log.Fatal("Failed to load match config: ", err)
	}

	// The embedder is only a fallback for opinions the offline backfill
	// missed; the server still runs without a key, it just cannot score
	// un-embedded opinions.
	var embedder embedding.Embedder
	embCfg := embedding.LoadFromEnv()
	if client, err := embedding.NewClient(embCfg); err != nil {
		log.Printf("[main] embedding client disabled: %v", err)
	} else {
		embedder = client
	}

	repo := match.NewRepository(db.DB)
	handler := match.NewHandler(
		repo,
		match.NewSelector(repo),
		match.NewScorer(repo, embedder, cfg),
	)

	r := chi.NewRouter()
	r.Use(middleware.CORSMiddleware)
	r.Get("/", RootHandler)

	r.Mount("/match", match.SetupRoutes(handler))

	fmt.Println("Server listening on port :" + port + "...")

	http.ListenAndServe("0.0.0.0:"+port, r)
}
