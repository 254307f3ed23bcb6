package match

import (
	"log"
	"math/rand"

	"github.com/VotaMatch/VM-Backend/internal/similarity"
	"github.com/google/uuid"
)

// Selector picks the next opinion to present to a user. It prefers topics
// the user has not touched yet (breadth before depth), and among candidates
// it picks the opinion whose embedding is farthest from everything the user
// has already seen, so consecutive questions are never semantically
// redundant.
type Selector struct {
	repo Repository
}

// NewSelector creates a Selector backed by the given repository.
func NewSelector(repo Repository) *Selector {
	return &Selector{repo: repo}
}

// Next returns the next question for the user.
//
// Returns ErrNoTopicsSelected when the user has not picked topics yet, and
// ErrNoQuestionsAvailable when every opinion in the selected topics has been
// answered.
func (s *Selector) Next(userID string) (*Question, error) {
	selected, err := s.repo.SelectedTopicIDs(userID)
	if err != nil {
		return nil, err
	}
	if len(selected) == 0 {
		return nil, ErrNoTopicsSelected
	}

	answered, err := s.repo.AnsweredOpinions(userID)
	if err != nil {
		return nil, err
	}

	answeredIDs := make([]uuid.UUID, 0, len(answered))
	answeredTopics := make(map[uuid.UUID]struct{}, len(answered))
	var chosenEmbeddings [][]float64
	for _, op := range answered {
		answeredIDs = append(answeredIDs, op.ID)
		answeredTopics[op.TopicID] = struct{}{}
		if op.HasEmbedding() {
			chosenEmbeddings = append(chosenEmbeddings, op.Embedding)
		}
	}

	// Topics the user selected but has not answered in yet. If any exist,
	// restrict this pick to them so the profile spans every chosen interest
	// before concentrating on any one.
	poolTopics := make([]uuid.UUID, 0, len(selected))
	for _, id := range selected {
		if _, ok := answeredTopics[id]; !ok {
			poolTopics = append(poolTopics, id)
		}
	}
	if len(poolTopics) == 0 {
		poolTopics = selected
	}

	pool, err := s.repo.OpinionPool(poolTopics, answeredIDs)
	if err != nil {
		return nil, err
	}
	if len(pool) == 0 {
		return nil, ErrNoQuestionsAvailable
	}

	embedded := make([]Opinion, 0, len(pool))
	for _, op := range pool {
		if op.HasEmbedding() {
			embedded = append(embedded, op)
		}
	}

	var picked Opinion
	if len(chosenEmbeddings) == 0 || len(embedded) == 0 {
		// First question, or the entire pool is missing embeddings: pick
		// uniformly at random. An un-embedded pool still yields questions,
		// it just cannot be diversified.
		candidates := embedded
		if len(candidates) == 0 {
			candidates = pool
		}
		picked = candidates[rand.Intn(len(candidates))]
		log.Printf("[selector] random pick for user %s (%d answered, %d embedded in pool)",
			userID, len(answered), len(embedded))
	} else {
		picked = farthestOpinion(embedded, chosenEmbeddings)
		log.Printf("[selector] farthest-point pick %s for user %s among %d candidates",
			picked.ID, userID, len(embedded))
	}

	return &Question{
		QuestionID: picked.ID,
		Topic:      picked.Topic.Name,
		Statement:  picked.Statement(),
	}, nil
}

// farthestOpinion returns the opinion maximizing the minimum cosine distance
// to the already-chosen embeddings (max-min diversity sampling). Ties keep
// the first opinion encountered.
func farthestOpinion(candidates []Opinion, chosen [][]float64) Opinion {
	best := candidates[0]
	bestScore := -1.0

	for _, op := range candidates {
		minDist := 2.0
		usable := true
		for _, e := range chosen {
			d, err := similarity.Distance(op.Embedding, e)
			if err != nil {
				// Mixed embedding dimensions; this opinion cannot be compared.
				usable = false
				break
			}
			if d < minDist {
				minDist = d
			}
		}
		if !usable {
			continue
		}
		if minDist > bestScore {
			bestScore = minDist
			best = op
		}
	}

	return best
}
