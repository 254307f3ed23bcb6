package match_test

import (
	"sort"
	"time"

	"github.com/VotaMatch/VM-Backend/internal/match"
	"github.com/google/uuid"
)

// fakeRepo is an in-memory match.Repository for tests.
type fakeRepo struct {
	topics     []match.Topic
	candidates []match.Candidate
	opinions   []match.Opinion
	selected   map[string][]uuid.UUID
	answers    []match.Answer
	ledger     map[string]map[uuid.UUID]float64
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		selected: make(map[string][]uuid.UUID),
		ledger:   make(map[string]map[uuid.UUID]float64),
	}
}

func (f *fakeRepo) addTopic(name string) match.Topic {
	t := match.Topic{ID: uuid.New(), Name: name}
	f.topics = append(f.topics, t)
	return t
}

func (f *fakeRepo) addCandidate(name, party string) match.Candidate {
	c := match.Candidate{ID: uuid.New(), Name: name, Party: party}
	f.candidates = append(f.candidates, c)
	return c
}

func (f *fakeRepo) addOpinion(candidate match.Candidate, topic match.Topic, text string, embedding []float64) match.Opinion {
	o := match.Opinion{
		ID:          uuid.New(),
		CandidateID: candidate.ID,
		TopicID:     topic.ID,
		Text:        text,
		Embedding:   embedding,
		Topic:       topic,
	}
	f.opinions = append(f.opinions, o)
	return o
}

func (f *fakeRepo) AllTopics() ([]match.Topic, error) {
	return f.topics, nil
}

func (f *fakeRepo) TopicsByNames(names []string) ([]match.Topic, error) {
	var out []match.Topic
	for _, t := range f.topics {
		for _, n := range names {
			if t.Name == n {
				out = append(out, t)
			}
		}
	}
	return out, nil
}

func (f *fakeRepo) SelectedTopicIDs(userID string) ([]uuid.UUID, error) {
	return f.selected[userID], nil
}

func (f *fakeRepo) ReplaceSelectedTopics(userID string, topicIDs []uuid.UUID) error {
	f.selected[userID] = topicIDs
	return nil
}

func (f *fakeRepo) OpinionByID(id uuid.UUID) (*match.Opinion, error) {
	for _, o := range f.opinions {
		if o.ID == id {
			op := o
			return &op, nil
		}
	}
	return nil, match.ErrOpinionNotFound
}

func (f *fakeRepo) AnsweredOpinions(userID string) ([]match.Opinion, error) {
	var out []match.Opinion
	for _, a := range f.answers {
		if a.UserID != userID {
			continue
		}
		for _, o := range f.opinions {
			if o.ID == a.OpinionID {
				out = append(out, o)
			}
		}
	}
	return out, nil
}

func (f *fakeRepo) OpinionPool(topicIDs, exclude []uuid.UUID) ([]match.Opinion, error) {
	inTopics := make(map[uuid.UUID]struct{}, len(topicIDs))
	for _, id := range topicIDs {
		inTopics[id] = struct{}{}
	}
	excluded := make(map[uuid.UUID]struct{}, len(exclude))
	for _, id := range exclude {
		excluded[id] = struct{}{}
	}

	var out []match.Opinion
	for _, o := range f.opinions {
		if _, ok := inTopics[o.TopicID]; !ok {
			continue
		}
		if _, ok := excluded[o.ID]; ok {
			continue
		}
		out = append(out, o)
	}
	return out, nil
}

func (f *fakeRepo) TopicOpinions(topicID uuid.UUID) ([]match.Opinion, error) {
	var out []match.Opinion
	for _, o := range f.opinions {
		if o.TopicID == topicID && o.HasEmbedding() {
			out = append(out, o)
		}
	}
	return out, nil
}

func (f *fakeRepo) HasAnswer(userID string, opinionID uuid.UUID) (bool, error) {
	for _, a := range f.answers {
		if a.UserID == userID && a.OpinionID == opinionID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeRepo) InsertAnswer(a *match.Answer) error {
	for _, existing := range f.answers {
		if existing.UserID == a.UserID && existing.OpinionID == a.OpinionID {
			return match.ErrAlreadyAnswered
		}
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now()
	}
	f.answers = append(f.answers, *a)
	return nil
}

func (f *fakeRepo) AnswerCount(userID string) (int64, error) {
	var count int64
	for _, a := range f.answers {
		if a.UserID == userID {
			count++
		}
	}
	return count, nil
}

func (f *fakeRepo) AnswerHistory(userID string) ([]match.AnsweredStatement, error) {
	answers := make([]match.Answer, 0)
	for _, a := range f.answers {
		if a.UserID == userID {
			answers = append(answers, a)
		}
	}
	sort.SliceStable(answers, func(i, j int) bool {
		return answers[i].CreatedAt.Before(answers[j].CreatedAt)
	})

	var out []match.AnsweredStatement
	for _, a := range answers {
		o, err := f.OpinionByID(a.OpinionID)
		if err != nil {
			continue
		}
		out = append(out, match.AnsweredStatement{
			TopicName: o.Topic.Name,
			Statement: o.Statement(),
			Agree:     a.Agree,
		})
	}
	return out, nil
}

func (f *fakeRepo) LedgerScores(userID string, candidateIDs []uuid.UUID) (map[uuid.UUID]float64, error) {
	out := make(map[uuid.UUID]float64)
	for _, id := range candidateIDs {
		if score, ok := f.ledger[userID][id]; ok {
			out[id] = score
		}
	}
	return out, nil
}

func (f *fakeRepo) UpsertLedger(entries []match.UserMatch) error {
	for _, e := range entries {
		if f.ledger[e.UserID] == nil {
			f.ledger[e.UserID] = make(map[uuid.UUID]float64)
		}
		f.ledger[e.UserID][e.CandidateID] = e.Score
	}
	return nil
}

func (f *fakeRepo) Ledger(userID string) ([]match.LedgerRow, error) {
	var rows []match.LedgerRow
	for _, c := range f.candidates {
		if score, ok := f.ledger[userID][c.ID]; ok {
			rows = append(rows, match.LedgerRow{
				CandidateID: c.ID,
				Name:        c.Name,
				Party:       c.Party,
				Score:       score,
			})
		}
	}
	return rows, nil
}
