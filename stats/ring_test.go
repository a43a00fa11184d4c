package stats

import "testing"

func TestRingPush(t *testing.T) {
	r := NewRing(10)
	for i := 0; i < 5; i++ {
		r.Push(float64(i))
	}
	if r.Len() != 5 {
		t.Fatalf("Len = %d, want 5", r.Len())
	}
	vals := r.Values()
	if len(vals) != 5 {
		t.Fatalf("len = %d, want 5", len(vals))
	}
	for i, v := range vals {
		if v != float64(i) {
			t.Errorf("vals[%d] = %v, want %d", i, v, i)
		}
	}
}

func TestRingWrapAround(t *testing.T) {
	r := NewRing(64)
	total := 64 + 100
	for i := 0; i < total; i++ {
		r.Push(float64(i))
	}
	if r.Len() != 64 {
		t.Fatalf("Len = %d, want 64", r.Len())
	}
	vals := r.Values()
	if len(vals) != 64 {
		t.Fatalf("len = %d, want 64", len(vals))
	}
	// Oldest should be 100, newest should be total-1.
	if vals[0] != 100 {
		t.Errorf("oldest = %v, want 100", vals[0])
	}
	if vals[len(vals)-1] != float64(total-1) {
		t.Errorf("newest = %v, want %d", vals[len(vals)-1], total-1)
	}
	// Verify chronological order.
	for i := 1; i < len(vals); i++ {
		if vals[i] <= vals[i-1] {
			t.Fatalf("not sorted at index %d: %v <= %v", i, vals[i], vals[i-1])
		}
	}
}

func TestRingEmpty(t *testing.T) {
	r := NewRing(8)
	if vals := r.Values(); vals != nil {
		t.Errorf("expected nil, got %d values", len(vals))
	}
	if got := r.Last(); got != 0 {
		t.Errorf("Last = %v, want 0", got)
	}
	if r.Len() != 0 {
		t.Errorf("Len = %d, want 0", r.Len())
	}
}

func TestRingLast(t *testing.T) {
	r := NewRing(3)
	for _, v := range []float64{1, 2, 3, 4} {
		r.Push(v)
		if got := r.Last(); got != v {
			t.Errorf("Last after Push(%v) = %v", v, got)
		}
	}
}

func TestRingMinCapacity(t *testing.T) {
	r := NewRing(0)
	if r.Cap() != 1 {
		t.Fatalf("Cap = %d, want 1", r.Cap())
	}
	r.Push(1)
	r.Push(2)
	if got := r.Values(); len(got) != 1 || got[0] != 2 {
		t.Errorf("Values = %v, want [2]", got)
	}
}

func TestRingValuesAggregate(t *testing.T) {
	r := NewRing(16)
	for _, v := range []float64{0, 1, 1, 2, 3, 5, 8, 13, 21, 34} {
		r.Push(v)
	}
	avg, err := r.Values().Average()
	if err != nil {
		t.Fatalf("Average: %v", err)
	}
	if avg != 8.8 {
		t.Errorf("Average = %v, want 8.8", avg)
	}
}
