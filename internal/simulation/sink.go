package simulation

import (
	"fmt"
	"io"
	"sync"

	"go.uber.org/zap"

	"github.com/louisbranch/partybattle/internal/battle"
)

// ZapSink returns a narration sink that logs each line at debug level.
func ZapSink(logger *zap.Logger) battle.Sink {
	return battle.SinkFunc(func(line string) {
		logger.Debug("narration", zap.String("line", line))
	})
}

// writerSink serializes narration from concurrent lanes onto one writer.
type writerSink struct {
	mu  *sync.Mutex
	out io.Writer
	tag string
}

func (s writerSink) Narrate(line string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.tag != "" {
		fmt.Fprintf(s.out, "%s %s\n", s.tag, line)
		return
	}
	fmt.Fprintln(s.out, line)
}
