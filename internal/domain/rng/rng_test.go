package rng

import "testing"

func TestSameSeedProducesSameSequence(t *testing.T) {
	a := New(7)
	b := New(7)

	for i := 0; i < 20; i++ {
		x := a.Intn(1000)
		y := b.Intn(1000)
		if x != y {
			t.Fatalf("sequences diverged at i=%d: %d vs %d", i, x, y)
		}
	}
}

func TestShuffleIsAPermutation(t *testing.T) {
	src := New(1)
	items := []int{0, 1, 2, 3, 4, 5, 6, 7}
	src.Shuffle(len(items), func(i, j int) { items[i], items[j] = items[j], items[i] })

	seen := map[int]bool{}
	for _, v := range items {
		seen[v] = true
	}
	if len(seen) != 8 {
		t.Errorf("shuffle lost or duplicated elements: %v", items)
	}
}

func TestIntnZeroOrNegativeReturnsZero(t *testing.T) {
	src := New(1)
	if got := src.Intn(0); got != 0 {
		t.Errorf("Intn(0) = %d, want 0", got)
	}
	if got := src.Intn(-5); got != 0 {
		t.Errorf("Intn(-5) = %d, want 0", got)
	}
}
