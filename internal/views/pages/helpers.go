package pages

import (
	"encoding/json"
	"maps"
	"slices"
	"strconv"
	"strings"

	"imposter/internal/game"
	"imposter/internal/views"
)

func path(v views.View, op string) string {
	return "/rooms/" + v.Code + "/" + op
}

// action returns a datastar expression that sets signals and posts to path
func action(path string, assignments ...string) string {
	return strings.Join(append(assignments, "@post("+jsString(path)+")"), "; ")
}

func streamAction(code string) string {
	return "@get(" + jsString("/rooms/"+code+"/events") + ")"
}

// finishTurn posts the turn being shown so a late click cannot end the next one
func finishTurn(v views.View) string {
	return action(path(v, "turn"),
		"$game = "+strconv.Itoa(v.Turn.Game),
		"$round = "+strconv.Itoa(v.Turn.Round),
		"$index = "+strconv.Itoa(v.Turn.Index),
		"$timeout = false")
}

// jsString quotes s as a javascript string literal
func jsString(s string) string {
	b, _ := json.Marshal(s)
	out := []byte{'\''}
	for _, c := range b[1 : len(b)-1] {
		if c == '\'' {
			out = append(out, '\\')
		}
		out = append(out, c)
	}
	return string(append(out, '\''))
}

func displayTarget(target string) string {
	if target == game.Skip {
		return "skip"
	}
	return target
}

func tallyTargets(t *game.Tally) []string {
	return slices.Sorted(maps.Keys(t.Counts))
}
