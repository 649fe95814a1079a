package imposter

//go:generate templ generate -path internal/views

import (
	_ "embed"
)

// Embed the default word list
//
//go:embed static/words.yaml
var WordsYAML []byte
