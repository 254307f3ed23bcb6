package match

import "errors"

// Common errors. Handlers branch on these to pick a status code; anything
// else is a repository or provider failure and surfaces as a 500.
var (
	// ErrNoTopicsSelected means the caller must collect topic selections
	// before asking for a question. Recoverable.
	ErrNoTopicsSelected = errors.New("no topics selected")

	// ErrNoQuestionsAvailable means the user has exhausted every opinion in
	// their selected topics. Expected terminal condition, not a failure —
	// callers transition to the results stage.
	ErrNoQuestionsAvailable = errors.New("no more questions available for selected topics")

	// ErrOpinionNotFound means the referenced opinion id does not exist.
	ErrOpinionNotFound = errors.New("opinion not found")

	// ErrAlreadyAnswered means this user already answered this opinion. The
	// answer log is append-only with at most one answer per (user, opinion).
	ErrAlreadyAnswered = errors.New("opinion already answered by this user")

	// ErrUnknownTopic means a topic name did not resolve to a seeded topic.
	ErrUnknownTopic = errors.New("unknown topic")
)
