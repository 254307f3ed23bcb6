package match

import (
	"context"
	"fmt"
	"log"
	"math"
	"sort"
	"time"

	"github.com/VotaMatch/VM-Backend/internal/embedding"
	"github.com/VotaMatch/VM-Backend/internal/similarity"
	"github.com/google/uuid"
)

// Scorer maintains the per-user candidate score ledger. Each answer produces
// a similarity-weighted delta per candidate on the answered topic, which is
// merged additively into the ledger.
//
// The answer log is the source of truth; the ledger is an aggregate of it.
// Saving the answer and updating scores are two separate phases so a scoring
// failure never loses the user's answer.
type Scorer struct {
	repo     Repository
	embedder embedding.Embedder
	cfg      Config
}

// NewScorer creates a Scorer. embedder may be nil; it is only used as a
// fallback when an opinion is missing its pre-computed embedding.
func NewScorer(repo Repository, embedder embedding.Embedder, cfg Config) *Scorer {
	if cfg.TopSimilarities <= 0 {
		cfg = DefaultConfig()
	}
	return &Scorer{repo: repo, embedder: embedder, cfg: cfg}
}

// RecordAnswer validates and persists one answer. It does not touch the
// ledger; callers follow up with UpdateScores and treat its failure as
// non-fatal.
//
// Returns ErrOpinionNotFound for an unknown opinion and ErrAlreadyAnswered
// when this user already answered this opinion.
func (s *Scorer) RecordAnswer(userID string, opinionID uuid.UUID, agree bool) (*Opinion, error) {
	opinion, err := s.repo.OpinionByID(opinionID)
	if err != nil {
		return nil, err
	}

	exists, err := s.repo.HasAnswer(userID, opinionID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrAlreadyAnswered
	}

	answer := &Answer{
		ID:        uuid.NewString(),
		UserID:    userID,
		OpinionID: opinionID,
		Agree:     agree,
		CreatedAt: time.Now(),
	}
	if err := s.repo.InsertAnswer(answer); err != nil {
		return nil, err
	}

	return opinion, nil
}

// UpdateScores computes per-candidate deltas for one answer and merges them
// additively into the user's ledger. Replaying the same answer doubles its
// contribution; at-most-once submission is enforced by RecordAnswer, not
// here, so the ledger stays rebuildable by replaying the answer log.
func (s *Scorer) UpdateScores(ctx context.Context, userID string, opinion *Opinion, agree bool) error {
	deltas, err := s.scoreDeltas(ctx, opinion, agree)
	if err != nil {
		return err
	}
	if len(deltas) == 0 {
		log.Printf("[scorer] no scorable opinions on topic %s, ledger unchanged", opinion.TopicID)
		return nil
	}

	candidateIDs := make([]uuid.UUID, 0, len(deltas))
	for id := range deltas {
		candidateIDs = append(candidateIDs, id)
	}

	current, err := s.repo.LedgerScores(userID, candidateIDs)
	if err != nil {
		return err
	}

	entries := make([]UserMatch, 0, len(deltas))
	for id, delta := range deltas {
		entries = append(entries, UserMatch{
			UserID:      userID,
			CandidateID: id,
			Score:       current[id] + delta,
		})
	}

	return s.repo.UpsertLedger(entries)
}

// scoreDeltas turns one answer into a per-candidate delta in [0,1], summing
// to 1 across the batch.
func (s *Scorer) scoreDeltas(ctx context.Context, opinion *Opinion, agree bool) (map[uuid.UUID]float64, error) {
	shown := []float64(opinion.Embedding)
	if len(shown) == 0 {
		// Fallback: embed the statement on the fly. Slow and billed, so it
		// only happens when the offline backfill missed this opinion.
		if s.embedder == nil {
			return nil, fmt.Errorf("opinion %s has no embedding and no embedder is configured", opinion.ID)
		}
		var err error
		shown, err = s.embedder.Embed(ctx, opinion.Statement())
		if err != nil {
			return nil, fmt.Errorf("fallback embedding failed for opinion %s: %w", opinion.ID, err)
		}
	}

	pool, err := s.repo.TopicOpinions(opinion.TopicID)
	if err != nil {
		return nil, err
	}

	perCandidate := make(map[uuid.UUID][]float64)
	for _, other := range pool {
		if !other.HasEmbedding() {
			continue
		}
		sim, err := similarity.Cosine(shown, other.Embedding)
		if err != nil {
			log.Printf("[scorer] skipping opinion %s: %v", other.ID, err)
			continue
		}
		// Disagreement is alignment with the opposite semantic position.
		if !agree {
			sim = 1 - sim
		}
		perCandidate[other.CandidateID] = append(perCandidate[other.CandidateID], sim)
	}

	raw := make(map[uuid.UUID]float64, len(perCandidate))
	total := 0.0
	for candidateID, sims := range perCandidate {
		sort.Sort(sort.Reverse(sort.Float64Slice(sims)))
		top := sims
		if len(top) > s.cfg.TopSimilarities {
			top = top[:s.cfg.TopSimilarities]
		}
		sum := 0.0
		for _, v := range top {
			sum += v
		}
		avg := sum / float64(len(top))
		raw[candidateID] = avg
		total += avg
	}

	if len(raw) == 0 {
		return raw, nil
	}

	// Normalize the batch to sum to 1. A zero total (e.g. every comparison
	// degenerate) splits equally so no candidate is favored by accident.
	deltas := make(map[uuid.UUID]float64, len(raw))
	if total == 0 {
		equal := 1.0 / float64(len(raw))
		for id := range raw {
			deltas[id] = equal
		}
		return deltas, nil
	}
	for id, score := range raw {
		deltas[id] = score / total
	}
	return deltas, nil
}

// RankedMatches returns the user's candidates ordered by score, highest
// first. With normalize, scores are min-max scaled to [0,100]; when every
// candidate is tied the degenerate range maps everyone to 50.0 so no false
// winner appears. A user with no ledger entries gets an empty list.
func (s *Scorer) RankedMatches(userID string, normalize bool) ([]CandidateScore, error) {
	rows, err := s.repo.Ledger(userID)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return []CandidateScore{}, nil
	}

	minScore, maxScore := rows[0].Score, rows[0].Score
	for _, row := range rows[1:] {
		if row.Score < minScore {
			minScore = row.Score
		}
		if row.Score > maxScore {
			maxScore = row.Score
		}
	}

	scores := make([]CandidateScore, 0, len(rows))
	for _, row := range rows {
		score := row.Score
		if normalize {
			if maxScore > minScore {
				score = (row.Score - minScore) / (maxScore - minScore) * 100
			} else {
				score = 50.0
			}
		}
		scores = append(scores, CandidateScore{
			CandidateName:   row.Name,
			Party:           row.Party,
			Score:           score,
			MatchPercentage: int(math.Round(score)),
		})
	}

	sort.SliceStable(scores, func(i, j int) bool {
		return scores[i].Score > scores[j].Score
	})

	return scores, nil
}

// HasStrongMatch reports whether the user's top normalized score meets the
// configured threshold. The signal is suppressed until the user has answered
// the configured minimum number of questions.
func (s *Scorer) HasStrongMatch(userID string) (bool, error) {
	count, err := s.repo.AnswerCount(userID)
	if err != nil {
		return false, err
	}
	if count < int64(s.cfg.MinAnswersForStrongMatch) {
		return false, nil
	}

	scores, err := s.RankedMatches(userID, true)
	if err != nil {
		return false, err
	}
	if len(scores) == 0 {
		return false, nil
	}

	return scores[0].Score >= s.cfg.StrongMatchThreshold, nil
}
