// Package netx holds helpers for streaming request and response bodies.
package netx

import (
	"io"
	"math"
	"sync"
)

// ProgressReader reports how much of a body of known size has been read, as
// a whole percentage. The callback fires only when the percentage changes.
type ProgressReader struct {
	r     io.Reader
	total int64
	fn    func(percent int)

	mu   sync.Mutex
	sent int64
	last int
}

// NewProgressReader returns r unchanged when fn is nil or total is not
// positive, since no meaningful percentage exists then.
func NewProgressReader(r io.Reader, total int64, fn func(percent int)) io.Reader {
	if fn == nil || total <= 0 {
		return r
	}
	return &ProgressReader{r: r, total: total, fn: fn, last: -1}
}

func (p *ProgressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	if n > 0 {
		p.advance(int64(n))
	}
	return n, err
}

func (p *ProgressReader) advance(n int64) {
	p.mu.Lock()
	p.sent += n
	percent := Percent(p.sent, p.total)
	changed := percent != p.last
	p.last = percent
	p.mu.Unlock()

	if changed {
		p.fn(percent)
	}
}

// Percent is round(sent*100/total), clamped to [0, 100].
func Percent(sent, total int64) int {
	if total <= 0 {
		return 0
	}
	v := int(math.Round(float64(sent) * 100 / float64(total)))
	return min(max(v, 0), 100)
}
