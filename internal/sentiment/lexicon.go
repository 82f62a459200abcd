package sentiment

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed lexicon.yaml
var defaultLexiconYAML []byte

// Lexicon holds the word tables the scorer is parameterized over.
type Lexicon struct {
	Positive      []string `yaml:"positive"`
	Negative      []string `yaml:"negative"`
	Neutral       []string `yaml:"neutral"`
	StrongPhrases []string `yaml:"strong_phrases"`
	StopWords     []string `yaml:"stop_words"`
}

// DefaultLexicon returns the embedded lexicon.
func DefaultLexicon() Lexicon {
	lex, err := ParseLexicon(defaultLexiconYAML)
	if err != nil {
		panic(fmt.Sprintf("embedded lexicon is invalid: %v", err))
	}
	return lex
}

// LoadLexicon reads a YAML lexicon from path. An empty path yields the default lexicon.
func LoadLexicon(path string) (Lexicon, error) {
	if path == "" {
		return DefaultLexicon(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Lexicon{}, fmt.Errorf("failed to read lexicon %s: %w", path, err)
	}
	lex, err := ParseLexicon(data)
	if err != nil {
		return Lexicon{}, fmt.Errorf("lexicon %s: %w", path, err)
	}
	return lex, nil
}

// ParseLexicon decodes and normalizes a YAML lexicon.
func ParseLexicon(data []byte) (Lexicon, error) {
	var lex Lexicon
	if err := yaml.Unmarshal(data, &lex); err != nil {
		return Lexicon{}, fmt.Errorf("failed to parse lexicon: %w", err)
	}
	lex = lex.normalized()
	if err := lex.Validate(); err != nil {
		return Lexicon{}, err
	}
	return lex, nil
}

// Validate checks that every scoring table has at least one entry.
// Strong phrases and stop words may be empty.
func (l Lexicon) Validate() error {
	tables := []struct {
		name    string
		entries []string
	}{
		{"positive", l.Positive},
		{"negative", l.Negative},
		{"neutral", l.Neutral},
	}
	var errs []error
	for _, tbl := range tables {
		if len(tbl.entries) == 0 {
			errs = append(errs, fmt.Errorf("%s word list is empty", tbl.name))
		}
	}
	return errors.Join(errs...)
}

func (l Lexicon) normalized() Lexicon {
	return Lexicon{
		Positive:      normalizeEntries(l.Positive),
		Negative:      normalizeEntries(l.Negative),
		Neutral:       normalizeEntries(l.Neutral),
		StrongPhrases: normalizeEntries(l.StrongPhrases),
		StopWords:     normalizeEntries(l.StopWords),
	}
}

func normalizeEntries(entries []string) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		e = strings.ToLower(strings.TrimSpace(e))
		if e != "" {
			out = append(out, e)
		}
	}
	return out
}
