package history

import "testing"

func TestScrollWalksHistory(t *testing.T) {
	entries := []string{"a", "b", "c"}
	cur := Reset()

	steps := []struct {
		dir      Direction
		value    string
		position Position
		previous Position
	}{
		{Up, "c", 0, Unset},
		{Up, "b", 1, 0},
		{Up, "a", 2, 1},
		{Up, "a", 2, 1},
		{Down, "b", 1, 2},
		{Down, "c", 0, 1},
		{Down, "", Unset, Unset},
	}
	for i, want := range steps {
		step, ok := Scroll(want.dir, entries, cur)
		if !ok {
			t.Fatalf("step %d: expected scroll to apply", i)
		}
		if step.Value != want.value || step.Cursor.Position != want.position || step.Cursor.Previous != want.previous {
			t.Fatalf("step %d (%s): got %+v, want value=%q pos=%d prev=%d", i, want.dir, step, want.value, want.position, want.previous)
		}
		cur = step.Cursor
	}
}

func TestScrollUpThenDownClears(t *testing.T) {
	for _, entries := range [][]string{{"only"}, {"a", "b"}, {"a", "b", "c", "d"}} {
		up, ok := Scroll(Up, entries, Reset())
		if !ok {
			t.Fatalf("%v: up should apply", entries)
		}
		down, ok := Scroll(Down, entries, up.Cursor)
		if !ok {
			t.Fatalf("%v: down should apply", entries)
		}
		if down.Value != "" || down.Cursor.Browsing() {
			t.Fatalf("%v: expected cleared input and unset cursor, got %+v", entries, down)
		}
	}
}

func TestScrollSingleEntryOldestKeepsPreviousUnset(t *testing.T) {
	entries := []string{"only"}
	first, _ := Scroll(Up, entries, Reset())
	second, _ := Scroll(Up, entries, first.Cursor)
	if second.Value != "only" || second.Cursor.Position != 0 || second.Cursor.Previous != Unset {
		t.Fatalf("unexpected step at oldest of single history: %+v", second)
	}
	down, _ := Scroll(Down, entries, second.Cursor)
	if down.Value != "" {
		t.Fatalf("down after single entry should clear, got %q", down.Value)
	}
}

func TestScrollDownAtLatestRestoresWhenScrolledFurther(t *testing.T) {
	entries := []string{"a", "b", "c", "d"}
	step, _ := Scroll(Down, entries, Cursor{Position: 0, Previous: 3})
	if step.Value != "d" || step.Cursor.Browsing() {
		t.Fatalf("expected latest entry restored with reset cursor, got %+v", step)
	}
}

func TestScrollDownOutOfRangeClears(t *testing.T) {
	step, ok := Scroll(Down, []string{"a"}, Cursor{Position: 5, Previous: 4})
	if !ok || step.Value != "" || step.Cursor != Reset() {
		t.Fatalf("expected clear on out-of-range cursor, got %+v", step)
	}
}

func TestScrollIgnoresEmptyEntries(t *testing.T) {
	entries := []string{"a", "", "b", ""}
	step, _ := Scroll(Up, entries, Reset())
	if step.Value != "b" {
		t.Fatalf("expected newest non-empty entry, got %q", step.Value)
	}
	step, _ = Scroll(Up, entries, step.Cursor)
	if step.Value != "a" || step.Cursor.Position != 1 {
		t.Fatalf("expected a at position 1, got %+v", step)
	}
}

func TestScrollEmptyHistoryIsNoop(t *testing.T) {
	if _, ok := Scroll(Up, nil, Reset()); ok {
		t.Fatalf("empty history should be a no-op")
	}
	if _, ok := Scroll(Down, []string{"", ""}, Reset()); ok {
		t.Fatalf("history of empty entries should be a no-op")
	}
}

func TestBufferAppendSkipsEmpty(t *testing.T) {
	var b Buffer
	b.Append("one")
	if b.Append("") {
		t.Fatalf("empty input should not be recorded")
	}
	b.Append("two")
	if got := b.Entries(); len(got) != 2 || got[0] != "one" || got[1] != "two" {
		t.Fatalf("Entries() = %v", got)
	}
	step, ok := b.Scroll(Up, Reset())
	if !ok || step.Value != "two" {
		t.Fatalf("Buffer.Scroll = %+v, %v", step, ok)
	}
}
