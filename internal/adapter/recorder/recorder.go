// Package recorder persists the immutable game record written at
// GAME_OVER. It never sits on the room's command loop: Record enqueues
// onto a buffered channel and a background goroutine does the actual
// insert, retrying with backoff the way 0DukePan's message writer does
// for chat history.
package recorder

import (
	"context"
	"encoding/json"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	queueSize      = 256
	maxRetries     = 5
	initialBackoff = 100 * time.Millisecond
)

// GameRecord is the immutable row written once a room reaches GAME_OVER.
type GameRecord struct {
	RoomID      string
	RoomCode    string
	WinningTeam string
	DayNumber   int
	Roles       map[string]string // player id -> role name, snapshot at game over
	EndedAt     time.Time
}

// Recorder batches game-record writes onto a single background goroutine.
type Recorder struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
	queue  chan GameRecord
	done   chan struct{}
	wg     sync.WaitGroup
}

// New opens a pgx pool against dsn and starts the writer goroutine. A
// discarding Recorder (via NewNoop) is used when no DATABASE_URL is configured —
// persistence is ambient, never load-bearing for gameplay.
func New(ctx context.Context, dsn string, logger *slog.Logger) (*Recorder, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	r := &Recorder{
		pool:   pool,
		logger: logger,
		queue:  make(chan GameRecord, queueSize),
		done:   make(chan struct{}),
	}
	r.wg.Add(1)
	go r.loop()
	return r, nil
}

// NewNoop returns a Recorder that discards every record. Used when the
// deployment has no database configured.
func NewNoop(logger *slog.Logger) *Recorder {
	r := &Recorder{logger: logger, queue: make(chan GameRecord, queueSize), done: make(chan struct{})}
	r.wg.Add(1)
	go r.loopNoop()
	return r
}

// Record enqueues a game record for asynchronous persistence. It never
// blocks the caller's command loop: a full queue drops the record and
// logs a warning rather than applying backpressure to gameplay.
func (r *Recorder) Record(rec GameRecord) {
	select {
	case r.queue <- rec:
	default:
		r.logger.Warn("recorder queue full, dropping game record", "room_code", rec.RoomCode)
	}
}

// Close drains the queue and stops the writer goroutine.
func (r *Recorder) Close() {
	close(r.done)
	r.wg.Wait()
	if r.pool != nil {
		r.pool.Close()
	}
}

func (r *Recorder) loopNoop() {
	defer r.wg.Done()
	for {
		select {
		case <-r.done:
			return
		case <-r.queue:
		}
	}
}

func (r *Recorder) loop() {
	defer r.wg.Done()
	for {
		select {
		case <-r.done:
			for {
				select {
				case rec := <-r.queue:
					r.writeWithRetry(rec)
				default:
					return
				}
			}
		case rec := <-r.queue:
			r.writeWithRetry(rec)
		}
	}
}

func (r *Recorder) writeWithRetry(rec GameRecord) {
	ctx := context.Background()
	rolesJSON, err := json.Marshal(rec.Roles)
	if err != nil {
		r.logger.Error("failed to marshal game record roles", "error", err, "room_code", rec.RoomCode)
		return
	}

	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		_, err := r.pool.Exec(ctx,
			`INSERT INTO game_records (room_id, room_code, winning_team, day_number, roles, ended_at)
			 VALUES ($1, $2, $3, $4, $5, $6)`,
			rec.RoomID, rec.RoomCode, rec.WinningTeam, rec.DayNumber, rolesJSON, rec.EndedAt)
		if err == nil {
			return
		}
		lastErr = err
		time.Sleep(initialBackoff * time.Duration(math.Pow(2, float64(attempt))))
	}
	r.logger.Error("failed to persist game record after retries", "error", lastErr, "room_code", rec.RoomCode, "attempts", maxRetries)
}
