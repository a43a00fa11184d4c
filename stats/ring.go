package stats

// Ring is a fixed-capacity circular buffer of samples. Once full, each
// push overwrites the oldest sample.
type Ring struct {
	buf   []float64
	head  int // next write position
	count int // number of valid entries (0..cap)
}

// NewRing returns a ring holding at most capacity samples. A capacity
// below one is raised to one.
func NewRing(capacity int) *Ring {
	if capacity < 1 {
		capacity = 1
	}
	return &Ring{buf: make([]float64, capacity)}
}

// Push appends a sample, overwriting the oldest if full.
func (r *Ring) Push(v float64) {
	r.buf[r.head] = v
	r.head = (r.head + 1) % len(r.buf)
	if r.count < len(r.buf) {
		r.count++
	}
}

// Len reports how many samples are currently held.
func (r *Ring) Len() int {
	return r.count
}

// Cap reports the fixed capacity.
func (r *Ring) Cap() int {
	return len(r.buf)
}

// Values returns the held samples in chronological order, oldest first.
func (r *Ring) Values() List {
	if r.count == 0 {
		return nil
	}

	start := 0
	if r.count == len(r.buf) {
		start = r.head // head points to the oldest when full
	}

	result := make(List, r.count)
	for i := 0; i < r.count; i++ {
		result[i] = r.buf[(start+i)%len(r.buf)]
	}
	return result
}

// Last returns the most recently pushed sample, or zero when empty.
func (r *Ring) Last() float64 {
	if r.count == 0 {
		return 0
	}
	return r.buf[(r.head-1+len(r.buf))%len(r.buf)]
}
