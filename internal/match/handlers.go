package match

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/VotaMatch/VM-Backend/internal/utils"
	"github.com/google/uuid"
)

// Handler carries the core components each route needs. Everything is
// injected at construction time; handlers hold no global state.
type Handler struct {
	Repo     Repository
	Selector *Selector
	Scorer   *Scorer
}

// NewHandler wires a Handler from its collaborators.
func NewHandler(repo Repository, selector *Selector, scorer *Scorer) *Handler {
	return &Handler{Repo: repo, Selector: selector, Scorer: scorer}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

// TopicHandler lists every available topic.
func (h *Handler) TopicHandler(w http.ResponseWriter, r *http.Request) {
	topics, err := h.Repo.AllTopics()
	if err != nil {
		http.Error(w, "DB error: "+err.Error(), http.StatusInternalServerError)
		return
	}
	if len(topics) == 0 {
		http.Error(w, "No topics found", http.StatusNotFound)
		return
	}

	writeJSON(w, topics)
}

// SelectTopicsHandler replaces the user's selected topic set.
func (h *Handler) SelectTopicsHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "Missing user ID in context", http.StatusUnauthorized)
		return
	}

	var input struct {
		Topics []string `json:"topics"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if len(input.Topics) == 0 {
		http.Error(w, "At least one topic is required", http.StatusBadRequest)
		return
	}

	names := make([]string, 0, len(input.Topics))
	for _, t := range input.Topics {
		names = append(names, strings.ToLower(strings.TrimSpace(t)))
	}

	topics, err := h.Repo.TopicsByNames(names)
	if err != nil {
		http.Error(w, "DB error: "+err.Error(), http.StatusInternalServerError)
		return
	}
	if len(topics) != len(names) {
		known := make(map[string]struct{}, len(topics))
		for _, t := range topics {
			known[t.Name] = struct{}{}
		}
		for _, n := range names {
			if _, ok := known[n]; !ok {
				http.Error(w, "Unknown topic: "+n, http.StatusBadRequest)
				return
			}
		}
	}

	topicIDs := make([]uuid.UUID, 0, len(topics))
	for _, t := range topics {
		topicIDs = append(topicIDs, t.ID)
	}

	if err := h.Repo.ReplaceSelectedTopics(userID, topicIDs); err != nil {
		http.Error(w, "Failed to save topics", http.StatusInternalServerError)
		return
	}

	writeJSON(w, map[string]any{
		"user_id": userID,
		"topics":  names,
	})
}

// ProfileHandler returns the user's selected topics and answer count.
func (h *Handler) ProfileHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "Missing user ID in context", http.StatusUnauthorized)
		return
	}

	topicIDs, err := h.Repo.SelectedTopicIDs(userID)
	if err != nil {
		http.Error(w, "DB error: "+err.Error(), http.StatusInternalServerError)
		return
	}
	count, err := h.Repo.AnswerCount(userID)
	if err != nil {
		http.Error(w, "DB error: "+err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, map[string]any{
		"user_id":         userID,
		"selected_topics": topicIDs,
		"answers_count":   count,
		"status":          "active",
	})
}

// QuestionHandler returns the next question for the user.
func (h *Handler) QuestionHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "Missing user ID in context", http.StatusUnauthorized)
		return
	}

	question, err := h.Selector.Next(userID)
	switch {
	case errors.Is(err, ErrNoTopicsSelected):
		http.Error(w, "No topics selected. Please select topics first.", http.StatusBadRequest)
		return
	case errors.Is(err, ErrNoQuestionsAvailable):
		http.Error(w, "No more questions available for selected topics", http.StatusNotFound)
		return
	case err != nil:
		log.Printf("[match] question selection failed for user %s: %v", userID, err)
		http.Error(w, "Failed to select question", http.StatusInternalServerError)
		return
	}

	writeJSON(w, question)
}

// AnswerHandler records one agree/disagree answer and returns the updated
// scores. The answer is committed first; a scoring failure is logged and the
// answer still counts, since the ledger can be rebuilt from the answer log.
func (h *Handler) AnswerHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "Missing user ID in context", http.StatusUnauthorized)
		return
	}

	var input struct {
		QuestionID uuid.UUID `json:"question_id"`
		Agree      bool      `json:"agree"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if input.QuestionID == uuid.Nil {
		http.Error(w, "question_id is required", http.StatusBadRequest)
		return
	}

	opinion, err := h.Scorer.RecordAnswer(userID, input.QuestionID, input.Agree)
	switch {
	case errors.Is(err, ErrOpinionNotFound):
		http.Error(w, "Opinion not found", http.StatusNotFound)
		return
	case errors.Is(err, ErrAlreadyAnswered):
		http.Error(w, "Opinion already answered", http.StatusConflict)
		return
	case err != nil:
		log.Printf("[match] failed to save answer for user %s: %v", userID, err)
		http.Error(w, "Failed to save answer", http.StatusInternalServerError)
		return
	}

	if err := h.Scorer.UpdateScores(r.Context(), userID, opinion, input.Agree); err != nil {
		// Best effort: the answer is already durable, scores can be rebuilt.
		log.Printf("[match] score update failed for user %s: %v", userID, err)
	}

	strongMatch, err := h.Scorer.HasStrongMatch(userID)
	if err != nil {
		log.Printf("[match] strong-match check failed for user %s: %v", userID, err)
		strongMatch = false
	}

	scores, err := h.Scorer.RankedMatches(userID, true)
	if err != nil {
		log.Printf("[match] ranked matches failed for user %s: %v", userID, err)
		scores = nil
	}
	currentScores := make(map[string]float64, len(scores))
	for _, s := range scores {
		currentScores[s.CandidateName] = s.Score
	}

	writeJSON(w, map[string]any{
		"question_id":      input.QuestionID,
		"answer_accepted":  true,
		"current_scores":   currentScores,
		"has_strong_match": strongMatch,
	})
}

// MatchesHandler returns the user's ranked candidates with normalized
// percentages and a preferences summary.
func (h *Handler) MatchesHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "Missing user ID in context", http.StatusUnauthorized)
		return
	}

	count, err := h.Repo.AnswerCount(userID)
	if err != nil {
		http.Error(w, "DB error: "+err.Error(), http.StatusInternalServerError)
		return
	}
	if count == 0 {
		writeJSON(w, map[string]any{
			"user_id":                  userID,
			"total_answers":            0,
			"candidates":               []CandidateScore{},
			"user_preferences_summary": "No answers yet.",
		})
		return
	}

	scores, err := h.Scorer.RankedMatches(userID, true)
	if err != nil {
		http.Error(w, "Failed to compute matches", http.StatusInternalServerError)
		return
	}

	history, err := h.Repo.AnswerHistory(userID)
	if err != nil {
		log.Printf("[match] answer history failed for user %s: %v", userID, err)
		history = nil
	}

	writeJSON(w, map[string]any{
		"user_id":                  userID,
		"total_answers":            count,
		"candidates":               scores,
		"user_preferences_summary": PreferencesSummary(history),
	})
}
