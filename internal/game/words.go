package game

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Word is a secret word and the hint shown to the imposter
type Word struct {
	Word string `yaml:"word" json:"word"`
	Hint string `yaml:"hint" json:"hint"`
}

// WordList is the on-disk format of a word file
type WordList struct {
	Words []Word `yaml:"words"`
}

// WordService holds the words a round can be played with
type WordService struct {
	words []Word
}

// NewWordService parses a YAML word list. An empty list or an entry without
// both a word and a hint is rejected so a bad file fails at startup.
func NewWordService(data []byte) (*WordService, error) {
	var list WordList
	if err := yaml.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("failed to parse word list: %w", err)
	}
	if len(list.Words) == 0 {
		return nil, ErrNoWords
	}

	for i, w := range list.Words {
		w.Word = strings.TrimSpace(w.Word)
		w.Hint = strings.TrimSpace(w.Hint)
		if w.Word == "" || w.Hint == "" {
			return nil, fmt.Errorf("word list entry %d: word and hint are required", i+1)
		}
		list.Words[i] = w
	}

	return &WordService{words: list.Words}, nil
}

// LoadWordService reads a word list from path, falling back to the embedded
// default when path is empty
func LoadWordService(path string, fallback []byte) (*WordService, error) {
	if path == "" {
		return NewWordService(fallback)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read word list %s: %w", path, err)
	}
	return NewWordService(data)
}

// Len returns the number of loaded words
func (ws *WordService) Len() int {
	return len(ws.words)
}

// Pick returns a uniformly random word
func (ws *WordService) Pick(rng Rand) Word {
	return ws.words[rng.IntN(len(ws.words))]
}

// Words returns a copy of the loaded words
func (ws *WordService) Words() []Word {
	out := make([]Word, len(ws.words))
	copy(out, ws.words)
	return out
}
