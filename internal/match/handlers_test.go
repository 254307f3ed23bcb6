package match_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/VotaMatch/VM-Backend/internal/match"
	"github.com/google/uuid"
)

func newTestRouter(repo *fakeRepo) http.Handler {
	h := match.NewHandler(repo, match.NewSelector(repo), match.NewScorer(repo, nil, match.DefaultConfig()))
	return match.SetupRoutes(h)
}

func doRequest(t *testing.T, router http.Handler, method, path, userID, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if userID != "" {
		req.Header.Set("X-User-ID", userID)
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.NewDecoder(rr.Body).Decode(&out); err != nil {
		t.Fatalf("decoding response %q: %v", rr.Body.String(), err)
	}
	return out
}

func TestTopicsEndpoint(t *testing.T) {
	repo := newFakeRepo()
	router := newTestRouter(repo)

	rr := doRequest(t, router, http.MethodGet, "/topics", "", "")
	if rr.Code != http.StatusNotFound {
		t.Errorf("expected 404 with no topics, got %d", rr.Code)
	}

	repo.addTopic("economia")
	repo.addTopic("salud")

	rr = doRequest(t, router, http.MethodGet, "/topics", "", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	var topics []match.Topic
	if err := json.NewDecoder(rr.Body).Decode(&topics); err != nil {
		t.Fatalf("decoding topics: %v", err)
	}
	if len(topics) != 2 {
		t.Errorf("expected 2 topics, got %d", len(topics))
	}
}

func TestUserRoutesRequireHeader(t *testing.T) {
	router := newTestRouter(newFakeRepo())

	for _, tc := range []struct{ method, path string }{
		{http.MethodPost, "/topics/select"},
		{http.MethodGet, "/profile"},
		{http.MethodGet, "/question"},
		{http.MethodPost, "/answers"},
		{http.MethodGet, "/matches"},
	} {
		rr := doRequest(t, router, tc.method, tc.path, "", "")
		if rr.Code != http.StatusUnauthorized {
			t.Errorf("%s %s without X-User-ID: expected 401, got %d", tc.method, tc.path, rr.Code)
		}
	}
}

func TestSelectTopics(t *testing.T) {
	repo := newFakeRepo()
	repo.addTopic("economia")
	repo.addTopic("salud")
	router := newTestRouter(repo)

	rr := doRequest(t, router, http.MethodPost, "/topics/select", testUser, `{"topics":[]}`)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("empty topic list: expected 400, got %d", rr.Code)
	}

	rr = doRequest(t, router, http.MethodPost, "/topics/select", testUser, `{"topics":["astrologia"]}`)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("unknown topic: expected 400, got %d", rr.Code)
	}

	// Names are normalized to lowercase before lookup.
	rr = doRequest(t, router, http.MethodPost, "/topics/select", testUser, `{"topics":["Economia", " SALUD "]}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	body := decodeBody(t, rr)
	if body["user_id"] != testUser {
		t.Errorf("unexpected user_id %v", body["user_id"])
	}
	if len(repo.selected[testUser]) != 2 {
		t.Errorf("expected 2 selected topics persisted, got %d", len(repo.selected[testUser]))
	}
}

func TestQuestionEndpointWithoutTopics(t *testing.T) {
	router := newTestRouter(newFakeRepo())

	rr := doRequest(t, router, http.MethodGet, "/question", testUser, "")
	if rr.Code != http.StatusBadRequest {
		t.Errorf("no topics selected: expected 400, got %d", rr.Code)
	}
}

func TestAnswerEndpoint(t *testing.T) {
	repo := newFakeRepo()
	o1, _ := twoCandidateSetup(repo)
	repo.selected[testUser] = []uuid.UUID{o1.TopicID}
	router := newTestRouter(repo)

	rr := doRequest(t, router, http.MethodPost, "/answers", testUser, `{"agree":true}`)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("missing question_id: expected 400, got %d", rr.Code)
	}

	rr = doRequest(t, router, http.MethodPost, "/answers", testUser,
		`{"question_id":"`+uuid.NewString()+`","agree":true}`)
	if rr.Code != http.StatusNotFound {
		t.Errorf("unknown opinion: expected 404, got %d", rr.Code)
	}

	rr = doRequest(t, router, http.MethodPost, "/answers", testUser,
		`{"question_id":"`+o1.ID.String()+`","agree":true}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	body := decodeBody(t, rr)
	if body["answer_accepted"] != true {
		t.Errorf("expected answer_accepted=true, got %v", body["answer_accepted"])
	}
	scores, ok := body["current_scores"].(map[string]any)
	if !ok {
		t.Fatalf("current_scores missing or wrong shape: %v", body["current_scores"])
	}
	if scores["Ana"].(float64) <= scores["Beto"].(float64) {
		t.Errorf("agreeing with Ana's opinion should rank Ana first: %v", scores)
	}

	rr = doRequest(t, router, http.MethodPost, "/answers", testUser,
		`{"question_id":"`+o1.ID.String()+`","agree":false}`)
	if rr.Code != http.StatusConflict {
		t.Errorf("duplicate answer: expected 409, got %d", rr.Code)
	}
}

func TestMatchesEndpoint(t *testing.T) {
	repo := newFakeRepo()
	o1, _ := twoCandidateSetup(repo)
	repo.selected[testUser] = []uuid.UUID{o1.TopicID}
	router := newTestRouter(repo)

	rr := doRequest(t, router, http.MethodGet, "/matches", testUser, "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	body := decodeBody(t, rr)
	if body["total_answers"].(float64) != 0 {
		t.Errorf("expected 0 answers, got %v", body["total_answers"])
	}
	if body["user_preferences_summary"] != "No answers yet." {
		t.Errorf("unexpected summary for new user: %v", body["user_preferences_summary"])
	}

	rr = doRequest(t, router, http.MethodPost, "/answers", testUser,
		`{"question_id":"`+o1.ID.String()+`","agree":true}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("answer failed: %d %s", rr.Code, rr.Body.String())
	}

	rr = doRequest(t, router, http.MethodGet, "/matches", testUser, "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	body = decodeBody(t, rr)
	if body["total_answers"].(float64) != 1 {
		t.Errorf("expected 1 answer, got %v", body["total_answers"])
	}
	candidates, ok := body["candidates"].([]any)
	if !ok || len(candidates) != 2 {
		t.Fatalf("expected 2 ranked candidates, got %v", body["candidates"])
	}
	first := candidates[0].(map[string]any)
	if first["candidate_name"] != "Ana" {
		t.Errorf("expected Ana ranked first, got %v", first["candidate_name"])
	}
	if first["match_percentage"].(float64) != 100 {
		t.Errorf("expected top match at 100%%, got %v", first["match_percentage"])
	}
	summary, _ := body["user_preferences_summary"].(string)
	if !strings.Contains(summary, "Economia") {
		t.Errorf("expected topic name in summary, got %q", summary)
	}
}

// Full user journey through the HTTP surface.
func TestMatchFlowEndToEnd(t *testing.T) {
	repo := newFakeRepo()
	topic := repo.addTopic("economia")
	c1 := repo.addCandidate("Ana", "P1")
	c2 := repo.addCandidate("Beto", "P2")
	repo.addOpinion(c1, topic, "o1", []float64{1, 0})
	repo.addOpinion(c2, topic, "o2", []float64{0, 1})
	router := newTestRouter(repo)

	rr := doRequest(t, router, http.MethodPost, "/topics/select", testUser, `{"topics":["economia"]}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("select topics: %d %s", rr.Code, rr.Body.String())
	}

	for i := 0; i < 2; i++ {
		rr = doRequest(t, router, http.MethodGet, "/question", testUser, "")
		if rr.Code != http.StatusOK {
			t.Fatalf("question %d: %d %s", i, rr.Code, rr.Body.String())
		}
		q := decodeBody(t, rr)
		rr = doRequest(t, router, http.MethodPost, "/answers", testUser,
			`{"question_id":"`+q["question_id"].(string)+`","agree":true}`)
		if rr.Code != http.StatusOK {
			t.Fatalf("answer %d: %d %s", i, rr.Code, rr.Body.String())
		}
	}

	rr = doRequest(t, router, http.MethodGet, "/question", testUser, "")
	if rr.Code != http.StatusNotFound {
		t.Errorf("pool exhausted: expected 404, got %d", rr.Code)
	}

	rr = doRequest(t, router, http.MethodGet, "/profile", testUser, "")
	if rr.Code != http.StatusOK {
		t.Fatalf("profile: %d", rr.Code)
	}
	profile := decodeBody(t, rr)
	if profile["answers_count"].(float64) != 2 {
		t.Errorf("expected 2 answers in profile, got %v", profile["answers_count"])
	}
}
