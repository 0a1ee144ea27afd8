package hal

import (
	"context"
	"errors"
	"testing"
)

func TestSimBoardTickScript(t *testing.T) {
	b := NewSimBoard(true, true)
	b.Tick(3)

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		if err := b.Wait(ctx); err != nil {
			t.Fatalf("Wait %d returned error: %v", i, err)
		}
	}
	if err := b.Wait(ctx); !errors.Is(err, ErrTickSourceDrained) {
		t.Fatalf("Wait after drain = %v, want ErrTickSourceDrained", err)
	}
}

func TestSimBoardWaitHonorsContext(t *testing.T) {
	b := NewSimBoard(true, true)
	b.Tick(1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := b.Wait(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("Wait with cancelled context = %v, want context.Canceled", err)
	}
}

func TestSimBoardSamples(t *testing.T) {
	b := NewSimBoard(true, true)
	b.SetSample(700)
	b.QueueSamples(100, 200)

	for i, want := range []uint16{100, 200, 700, 700} {
		got, err := b.Sample()
		if err != nil {
			t.Fatalf("Sample %d returned error: %v", i, err)
		}
		if got != want {
			t.Errorf("Sample %d = %d, want %d", i, got, want)
		}
	}
}

func TestSimBoardRecordsTransitions(t *testing.T) {
	b := NewSimBoard(true, true)
	b.Set(true)
	b.Set(true) // no-op, same state
	b.Set(false)
	b.Set(true)

	got := b.Transitions()
	want := []bool{true, false, true}
	if len(got) != len(want) {
		t.Fatalf("transitions = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("transitions = %v, want %v", got, want)
		}
	}
}
