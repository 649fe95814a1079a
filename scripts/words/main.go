package main

import (
	"fmt"
	"os"
	"strings"

	"imposter"
	"imposter/internal/game"
)

// Checks a word list before it is deployed with WORDS_FILE. With no argument
// the built-in list is checked.
func main() {
	fmt.Println("Imposter word list check")
	fmt.Println("========================")
	fmt.Println()

	path := ""
	if len(os.Args) > 1 {
		path = os.Args[1]
	}

	ws, err := game.LoadWordService(path, imposter.WordsYAML)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	source := path
	if source == "" {
		source = "built-in list"
	}
	fmt.Printf("Loaded %d words from %s\n", ws.Len(), source)

	problems := check(ws.Words())
	for _, p := range problems {
		fmt.Printf("  - %s\n", p)
	}
	if len(problems) > 0 {
		os.Exit(1)
	}
	fmt.Println("OK")
}

// check reports words that would make a round unfair: duplicates, and hints
// that give the word away
func check(words []game.Word) []string {
	var problems []string
	seen := make(map[string]bool)
	for _, w := range words {
		key := strings.ToLower(w.Word)
		if seen[key] {
			problems = append(problems, fmt.Sprintf("duplicate word %q", w.Word))
		}
		seen[key] = true

		if strings.Contains(strings.ToLower(w.Hint), key) {
			problems = append(problems, fmt.Sprintf("hint %q contains the word %q", w.Hint, w.Word))
		}
	}
	return problems
}
