package match

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var titleCaser = cases.Title(language.Spanish)

// TopicDisplayName converts a topic slug like "medio_ambiente" into a
// display name like "Medio Ambiente".
func TopicDisplayName(slug string) string {
	return titleCaser.String(strings.ReplaceAll(slug, "_", " "))
}

// PreferencesSummary renders a user's answer history as a compact per-topic
// text summary, suitable for display and for seeding downstream prompts.
func PreferencesSummary(history []AnsweredStatement) string {
	if len(history) == 0 {
		return "No preferences recorded yet."
	}

	// Group statements by topic, preserving first-seen topic order.
	topicOrder := make([]string, 0)
	byTopic := make(map[string][]string)
	for _, a := range history {
		statement := a.Statement
		if !a.Agree {
			statement = "Disagrees with: " + statement
		}
		if _, seen := byTopic[a.TopicName]; !seen {
			topicOrder = append(topicOrder, a.TopicName)
		}
		byTopic[a.TopicName] = append(byTopic[a.TopicName], statement)
	}

	parts := make([]string, 0, len(topicOrder))
	for _, topic := range topicOrder {
		statements := byTopic[topic]
		prefix := TopicDisplayName(topic) + ": "
		if len(statements) <= 3 {
			parts = append(parts, prefix+strings.Join(statements, "; "))
			continue
		}
		parts = append(parts, fmt.Sprintf("%s%s (and %d more)",
			prefix, strings.Join(statements[:3], "; "), len(statements)-3))
	}

	return strings.Join(parts, " | ")
}
