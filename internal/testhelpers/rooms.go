package testhelpers

import (
	"time"

	"imposter/internal/game"
)

// Now is the fixed clock fixtures are built against
var Now = time.Date(2025, 6, 1, 20, 0, 0, 0, time.UTC)

// Room builds a room document in status. The first name hosts, the last one
// is the imposter, and the turn order is the join order. The secret word is
// Pizza with hint Italian.
func Room(code string, status game.Status, names ...string) game.Room {
	room := game.NewRoom(code, names[0], Now)
	for _, name := range names[1:] {
		room.Players = append(room.Players, game.NewPlayer(name, false, Now))
	}
	room.Status = status
	room.Version = 1
	if status == game.StatusLobby {
		return room
	}

	room.Word = "Pizza"
	room.Hint = "Italian"
	room.ImposterName = names[len(names)-1]
	room.TurnOrder = append([]string(nil), names...)
	room.Game = 1
	room.Round = 1
	room.Votes = map[string]string{}
	if status == game.StatusPlaying {
		room.TurnDeadline = Now.Add(30 * time.Second)
	}
	return room
}

// Finished builds a finished room where every player voted for votedOut,
// and votedOut voted to skip
func Finished(code, votedOut string, names ...string) game.Room {
	room := Room(code, game.StatusFinished, names...)
	for _, name := range names {
		room.Votes[name] = votedOut
	}
	room.Votes[votedOut] = game.Skip
	room.VotedOut = votedOut
	return room
}
