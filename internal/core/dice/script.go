package dice

// Script replays a fixed sequence of draws, wrapping around when exhausted.
// Values are reduced modulo n so a script never yields an out-of-range draw.
type Script struct {
	Values []int
	next   int
}

// Intn returns the next scripted value reduced into [0, n).
func (s *Script) Intn(n int) int {
	if n <= 0 || len(s.Values) == 0 {
		return 0
	}
	v := s.Values[s.next%len(s.Values)]
	s.next++
	v %= n
	if v < 0 {
		v += n
	}
	return v
}

// Draws reports how many values have been consumed.
func (s *Script) Draws() int {
	return s.next
}
