package match

import (
	"errors"
	"fmt"
	"os"

	"github.com/goccy/go-yaml"
)

// Config holds the product-tuned matching parameters. The defaults mirror
// the values the scoring model was calibrated with; they are deliberately
// configurable rather than hard constants.
type Config struct {
	// TopSimilarities caps how many of a candidate's per-topic similarities
	// are averaged into one answer's score, bounding the influence of a
	// candidate with many opinions on a single topic.
	TopSimilarities int `yaml:"top_similarities"`

	// StrongMatchThreshold is the normalized top score (0-100) at or above
	// which a user is considered strongly matched.
	StrongMatchThreshold float64 `yaml:"strong_match_threshold"`

	// MinAnswersForStrongMatch gates the strong-match signal until the user
	// has answered enough questions for it to mean anything.
	MinAnswersForStrongMatch int `yaml:"min_answers_for_strong_match"`
}

// DefaultConfig returns the calibrated defaults.
func DefaultConfig() Config {
	return Config{
		TopSimilarities:          3,
		StrongMatchThreshold:     70.0,
		MinAnswersForStrongMatch: 5,
	}
}

// LoadConfig reads matching parameters from the YAML file at the path in
// MATCH_CONFIG. A missing variable or file yields the defaults; a present
// but unreadable file is an error, so a typo'd path cannot silently fall
// back to different scoring behavior.
func LoadConfig() (Config, error) {
	cfg := DefaultConfig()

	path := os.Getenv("MATCH_CONFIG")
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("could not read %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	if cfg.TopSimilarities <= 0 {
		cfg.TopSimilarities = DefaultConfig().TopSimilarities
	}
	if cfg.StrongMatchThreshold <= 0 {
		cfg.StrongMatchThreshold = DefaultConfig().StrongMatchThreshold
	}
	if cfg.MinAnswersForStrongMatch <= 0 {
		cfg.MinAnswersForStrongMatch = DefaultConfig().MinAnswersForStrongMatch
	}

	return cfg, nil
}
