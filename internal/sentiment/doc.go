// Package sentiment implements the heuristic sentiment scorer.
//
// The Scorer counts lexicon hits (positive, negative, neutral words and strong negative phrases),
// applies the exclamation boost, normalizes into a three-label distribution and extracts keywords.
// Word lists are data (lexicon.yaml), not code. VaderScorer is an alternative engine with the same output shape.
// No mutable state: scorers are safe for concurrent use.
package sentiment
