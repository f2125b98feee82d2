package utils

// Increment hands out a strictly increasing sequence of ids.
// The zero value starts at 0.
type Increment struct {
	next int
}

// Next returns the current id and advances the sequence.
func (i *Increment) Next() int {
	id := i.next
	i.next++

	return id
}

func NewIncrement(start ...int) *Increment {
	incr := new(Increment)
	if len(start) > 0 {
		incr.next = start[0]
	}
	return incr
}
