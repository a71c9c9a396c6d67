package clock

import (
	"testing"
	"time"
)

func TestFakeAfterFuncFiresOnAdvance(t *testing.T) {
	f := NewFake(time.Unix(0, 0))
	fired := false
	f.AfterFunc(5*time.Second, func() { fired = true })

	f.Advance(3 * time.Second)
	if fired {
		t.Fatal("timer fired before its deadline")
	}

	f.Advance(2 * time.Second)
	if !fired {
		t.Fatal("timer did not fire at its deadline")
	}
}

func TestFakeTimerStopPreventsFire(t *testing.T) {
	f := NewFake(time.Unix(0, 0))
	fired := false
	timer := f.AfterFunc(1*time.Second, func() { fired = true })
	timer.Stop()

	f.Advance(2 * time.Second)
	if fired {
		t.Fatal("stopped timer should not fire")
	}
}

func TestFakeTickerFiresRepeatedly(t *testing.T) {
	f := NewFake(time.Unix(0, 0))
	ticker := f.Ticker(1 * time.Second)

	f.Advance(3 * time.Second)

	count := 0
	for {
		select {
		case <-ticker.C():
			count++
		default:
			if count != 3 {
				t.Fatalf("expected 3 ticks, got %d", count)
			}
			return
		}
	}
}

func TestFakeNowAdvances(t *testing.T) {
	start := time.Unix(100, 0)
	f := NewFake(start)
	f.Advance(10 * time.Second)

	if !f.Now().Equal(start.Add(10 * time.Second)) {
		t.Errorf("expected now to advance, got %v", f.Now())
	}
}
