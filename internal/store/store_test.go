package store

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"imposter/internal/game"
)

var testNow = time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC)

func recvRoom(t *testing.T, ch <-chan game.Room) game.Room {
	t.Helper()
	select {
	case room, ok := <-ch:
		require.True(t, ok, "subscription closed")
		return room
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for room update")
		return game.Room{}
	}
}

// recvVersion reads until a snapshot at or past version arrives
func recvVersion(t *testing.T, ch <-chan game.Room, version int64) game.Room {
	t.Helper()
	for {
		room := recvRoom(t, ch)
		if room.Version >= version {
			return room
		}
	}
}

func addPlayer(name string) Mutation {
	return func(r *game.Room) error {
		return game.AddPlayer(r, name, game.DefaultRules(), testNow)
	}
}

// testSessionStore runs the behaviour every SessionStore must share
func testSessionStore(t *testing.T, newStore func(t *testing.T) SessionStore) {
	ctx := context.Background()

	t.Run("create and get", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Create(ctx, game.NewRoom("AB12", "Ana", testNow)))

		room, err := s.Get(ctx, "AB12")
		require.NoError(t, err)
		assert.Equal(t, "AB12", room.Code)
		assert.Equal(t, []string{"Ana"}, room.PlayerNames())
		assert.Equal(t, int64(1), room.Version)
		assert.Equal(t, testNow, room.CreatedAt.UTC())
	})

	t.Run("create collision", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Create(ctx, game.NewRoom("AB12", "Ana", testNow)))

		err := s.Create(ctx, game.NewRoom("AB12", "Bo", testNow))
		assert.ErrorIs(t, err, ErrAlreadyExists)

		room, err := s.Get(ctx, "AB12")
		require.NoError(t, err)
		assert.Equal(t, []string{"Ana"}, room.PlayerNames())
	})

	t.Run("get missing", func(t *testing.T) {
		s := newStore(t)
		_, err := s.Get(ctx, "NOPE")
		assert.ErrorIs(t, err, ErrNotFound)
		assert.ErrorIs(t, err, game.ErrRoomNotFound)
	})

	t.Run("update bumps version", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Create(ctx, game.NewRoom("AB12", "Ana", testNow)))

		room, err := s.Update(ctx, "AB12", addPlayer("Bo"))
		require.NoError(t, err)
		assert.Equal(t, int64(2), room.Version)
		assert.Equal(t, []string{"Ana", "Bo"}, room.PlayerNames())

		stored, err := s.Get(ctx, "AB12")
		require.NoError(t, err)
		assert.Equal(t, int64(2), stored.Version)
		assert.Equal(t, []string{"Ana", "Bo"}, stored.PlayerNames())
	})

	t.Run("failed mutation writes nothing", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Create(ctx, game.NewRoom("AB12", "Ana", testNow)))

		_, err := s.Update(ctx, "AB12", func(r *game.Room) error {
			r.Players = nil
			return game.ErrNotHost
		})
		assert.ErrorIs(t, err, game.ErrNotHost)

		room, err := s.Get(ctx, "AB12")
		require.NoError(t, err)
		assert.Equal(t, int64(1), room.Version)
		assert.Len(t, room.Players, 1)
	})

	t.Run("update cannot change the code", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Create(ctx, game.NewRoom("AB12", "Ana", testNow)))

		room, err := s.Update(ctx, "AB12", func(r *game.Room) error {
			r.Code = "ZZZZ"
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, "AB12", room.Code)
	})

	t.Run("update missing", func(t *testing.T) {
		s := newStore(t)
		_, err := s.Update(ctx, "NOPE", addPlayer("Bo"))
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("subscribe pushes current then every write", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Create(ctx, game.NewRoom("AB12", "Ana", testNow)))

		subCtx, cancel := context.WithCancel(ctx)
		defer cancel()
		ch, err := s.Subscribe(subCtx, "AB12")
		require.NoError(t, err)

		first := recvRoom(t, ch)
		assert.Equal(t, int64(1), first.Version)

		_, err = s.Update(ctx, "AB12", addPlayer("Bo"))
		require.NoError(t, err)

		second := recvVersion(t, ch, 2)
		assert.Equal(t, []string{"Ana", "Bo"}, second.PlayerNames())
	})

	t.Run("slow subscriber gets the latest", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Create(ctx, game.NewRoom("AB12", "Ana", testNow)))

		subCtx, cancel := context.WithCancel(ctx)
		defer cancel()
		ch, err := s.Subscribe(subCtx, "AB12")
		require.NoError(t, err)

		for _, name := range []string{"Bo", "Cy", "Di"} {
			_, err := s.Update(ctx, "AB12", addPlayer(name))
			require.NoError(t, err)
		}

		latest := recvVersion(t, ch, 4)
		assert.Equal(t, []string{"Ana", "Bo", "Cy", "Di"}, latest.PlayerNames())
	})

	t.Run("subscription ends with its context", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Create(ctx, game.NewRoom("AB12", "Ana", testNow)))

		subCtx, cancel := context.WithCancel(ctx)
		ch, err := s.Subscribe(subCtx, "AB12")
		require.NoError(t, err)
		recvRoom(t, ch)
		cancel()

		require.Eventually(t, func() bool {
			select {
			case _, ok := <-ch:
				return !ok
			default:
				return false
			}
		}, 2*time.Second, 10*time.Millisecond)
	})

	t.Run("subscribe missing", func(t *testing.T) {
		s := newStore(t)
		_, err := s.Subscribe(ctx, "NOPE")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("concurrent joins at the boundary", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Create(ctx, game.NewRoom("AB12", "Ana", testNow)))
		for _, name := range []string{"Bo", "Cy", "Di"} {
			_, err := s.Update(ctx, "AB12", addPlayer(name))
			require.NoError(t, err)
		}

		var wg sync.WaitGroup
		errs := make([]error, 2)
		for i, name := range []string{"Ed", "Flo"} {
			wg.Add(1)
			go func(i int, name string) {
				defer wg.Done()
				_, errs[i] = s.Update(ctx, "AB12", addPlayer(name))
			}(i, name)
		}
		wg.Wait()

		var joined int
		for _, err := range errs {
			if err == nil {
				joined++
				continue
			}
			assert.ErrorIs(t, err, game.ErrRoomFull)
		}
		assert.Equal(t, 1, joined)

		room, err := s.Get(ctx, "AB12")
		require.NoError(t, err)
		assert.Len(t, room.Players, 5)
	})

	t.Run("concurrent updates all apply", func(t *testing.T) {
		s := newStore(t)
		room := game.NewRoom("AB12", "Ana", testNow)
		room.Status = game.StatusVoting
		room.Votes = map[string]string{}
		require.NoError(t, s.Create(ctx, room))

		const n = 10
		var wg sync.WaitGroup
		for i := 0; i < n; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				_, err := s.Update(ctx, "AB12", func(r *game.Room) error {
					r.Votes[fmt.Sprintf("voter-%02d", i)] = game.Skip
					return nil
				})
				assert.NoError(t, err)
			}(i)
		}
		wg.Wait()

		got, err := s.Get(ctx, "AB12")
		require.NoError(t, err)
		assert.Len(t, got.Votes, n)
		assert.Equal(t, int64(n+1), got.Version)
	})

	t.Run("ping", func(t *testing.T) {
		s := newStore(t)
		assert.NoError(t, s.Ping(ctx))
	})
}

func TestOffer_LatestWins(t *testing.T) {
	ch := make(chan int, 1)
	for i := 1; i <= 3; i++ {
		Offer(ch, i)
	}
	assert.Equal(t, 3, <-ch)

	select {
	case v := <-ch:
		t.Errorf("expected an empty channel, got %d", v)
	default:
	}
}
