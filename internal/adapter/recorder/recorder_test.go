package recorder

import (
	"io"
	"log/slog"
	"testing"
	"time"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNoopRecorderDrainsWithoutPanicking(t *testing.T) {
	r := NewNoop(discardLogger())
	r.Record(GameRecord{
		RoomID:      "room-1",
		RoomCode:    "ABC123",
		WinningTeam: "TOWN",
		DayNumber:   3,
		Roles:       map[string]string{"p1": "VILLAGER"},
		EndedAt:     time.Now(),
	})
	r.Close()
}

func TestRecordDropsOnFullQueueWithoutBlocking(t *testing.T) {
	r := NewNoop(discardLogger())
	defer r.Close()

	done := make(chan struct{})
	go func() {
		for i := 0; i < queueSize*2; i++ {
			r.Record(GameRecord{RoomCode: "ABC123"})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Record blocked instead of dropping when the queue is full")
	}
}

func TestCloseIsSafeAfterNoRecords(t *testing.T) {
	r := NewNoop(discardLogger())
	r.Close()
}
