package handlers

import (
	"errors"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var errTooManyStreams = errors.New("too many open streams for this room")

// ConnectionTracker tracks the open SSE and websocket streams per room
type ConnectionTracker struct {
	mu          sync.Mutex
	connections map[string]map[uuid.UUID]string // roomCode -> stream id -> player
	perRoom     int
	totalActive int64
	logger      *zap.Logger
}

// NewConnectionTracker creates a tracker allowing perRoom streams per room
func NewConnectionTracker(perRoom int, logger *zap.Logger) *ConnectionTracker {
	return &ConnectionTracker{
		connections: make(map[string]map[uuid.UUID]string),
		perRoom:     perRoom,
		logger:      logger,
	}
}

// Add registers a stream, refusing it once the room is at its limit. The
// returned func releases the slot.
func (ct *ConnectionTracker) Add(roomCode, player, transport string) (func(), error) {
	ct.mu.Lock()
	defer ct.mu.Unlock()

	streams := ct.connections[roomCode]
	if len(streams) >= ct.perRoom {
		return nil, errTooManyStreams
	}
	if streams == nil {
		streams = make(map[uuid.UUID]string)
		ct.connections[roomCode] = streams
	}

	id := uuid.New()
	streams[id] = player
	total := atomic.AddInt64(&ct.totalActive, 1)

	ct.logger.Info("Stream opened",
		zap.String("room", roomCode),
		zap.String("player", player),
		zap.String("transport", transport),
		zap.String("stream", id.String()),
		zap.Int("room_streams", len(streams)),
		zap.Int64("total_streams", total),
	)

	var once sync.Once
	return func() {
		once.Do(func() { ct.remove(roomCode, id) })
	}, nil
}

func (ct *ConnectionTracker) remove(roomCode string, id uuid.UUID) {
	ct.mu.Lock()
	defer ct.mu.Unlock()

	streams := ct.connections[roomCode]
	if _, ok := streams[id]; !ok {
		return
	}
	delete(streams, id)
	if len(streams) == 0 {
		delete(ct.connections, roomCode)
	}
	total := atomic.AddInt64(&ct.totalActive, -1)

	ct.logger.Info("Stream closed",
		zap.String("room", roomCode),
		zap.String("stream", id.String()),
		zap.Int("room_streams", len(streams)),
		zap.Int64("total_streams", total),
	)
}

// Count returns the number of open streams for a room
func (ct *ConnectionTracker) Count(roomCode string) int {
	ct.mu.Lock()
	defer ct.mu.Unlock()
	return len(ct.connections[roomCode])
}

// Total returns the number of open streams across all rooms
func (ct *ConnectionTracker) Total() int64 {
	return atomic.LoadInt64(&ct.totalActive)
}
