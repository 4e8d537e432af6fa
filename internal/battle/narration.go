package battle

import (
	"fmt"
	"sync"
)

// Sink receives the narrative lines an encounter produces.
type Sink interface {
	Narrate(line string)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(line string)

// Narrate calls f.
func (f SinkFunc) Narrate(line string) { f(line) }

// Discard drops every line.
var Discard Sink = SinkFunc(func(string) {})

// Journal collects lines in memory.
type Journal struct {
	mu    sync.Mutex
	lines []string
}

// Narrate appends line.
func (j *Journal) Narrate(line string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.lines = append(j.lines, line)
}

// Lines returns a copy of the collected lines.
func (j *Journal) Lines() []string {
	j.mu.Lock()
	defer j.mu.Unlock()
	out := make([]string, len(j.lines))
	copy(out, j.lines)
	return out
}

// Reset drops the collected lines.
func (j *Journal) Reset() {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.lines = nil
}

// Tee fans lines out to several sinks.
func Tee(sinks ...Sink) Sink {
	return SinkFunc(func(line string) {
		for _, s := range sinks {
			s.Narrate(line)
		}
	})
}

type narrator struct {
	sink Sink
}

func (n narrator) say(format string, args ...any) {
	n.sink.Narrate(fmt.Sprintf(format, args...))
}
