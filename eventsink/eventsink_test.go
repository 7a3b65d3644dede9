package eventsink

import "testing"

func TestEmitAndDrain(t *testing.T) {
	t.Parallel()

	s := New[string](4)
	s.Emit("a")
	s.Emit("b")
	s.Close()

	var got []string
	for v := range s.Events() {
		got = append(got, v)
	}
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Fatalf("unexpected events: %v", got)
	}
}

func TestEmitAfterCloseIsNoOp(t *testing.T) {
	t.Parallel()

	s := New[int](4)
	s.Close()
	s.Emit(1) // must not panic on a closed channel
}

func TestFullBufferDropsRatherThanBlocks(t *testing.T) {
	t.Parallel()

	s := New[int](1)
	s.Emit(1)
	s.Emit(2) // dropped, buffer already full

	v := <-s.Events()
	if v != 1 {
		t.Fatalf("expected first event to survive, got %d", v)
	}
}
