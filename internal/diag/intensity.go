// Package diag records per-frame diagnostic samples and exports them.
package diag

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"gonum.org/v1/gonum/stat"
)

// DefaultCapacity bounds the log to roughly twenty minutes at 30 FPS.
const DefaultCapacity = 36000

// IntensityLog is a bounded log of mean frame intensities. When full, the
// oldest sample is overwritten.
type IntensityLog struct {
	mu      sync.Mutex
	buf     []float64
	next    int
	full    bool
	dropped int
}

// Summary describes the samples currently held.
type Summary struct {
	Count   int
	Dropped int
	Mean    float64
	StdDev  float64
}

// NewIntensityLog creates a log holding at most capacity samples.
// Non-positive capacities use DefaultCapacity.
func NewIntensityLog(capacity int) *IntensityLog {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &IntensityLog{buf: make([]float64, capacity)}
}

// Add appends a sample.
func (l *IntensityLog) Add(v float64) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.full {
		l.dropped++
	}
	l.buf[l.next] = v
	l.next++
	if l.next == len(l.buf) {
		l.next = 0
		l.full = true
	}
}

// Reset discards all samples.
func (l *IntensityLog) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.next = 0
	l.full = false
	l.dropped = 0
}

// Len returns the number of samples held.
func (l *IntensityLog) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.lenLocked()
}

func (l *IntensityLog) lenLocked() int {
	if l.full {
		return len(l.buf)
	}
	return l.next
}

// Samples returns the held samples, oldest first.
func (l *IntensityLog) Samples() []float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.samplesLocked()
}

func (l *IntensityLog) samplesLocked() []float64 {
	out := make([]float64, 0, l.lenLocked())
	if l.full {
		out = append(out, l.buf[l.next:]...)
	}
	return append(out, l.buf[:l.next]...)
}

// WriteTo writes every sample as a decimal value followed by ",\n".
func (l *IntensityLog) WriteTo(w io.Writer) (int64, error) {
	samples := l.Samples()

	bw := bufio.NewWriter(w)
	var n int64
	for _, v := range samples {
		line := strconv.FormatFloat(v, 'f', -1, 64) + ",\n"
		written, err := bw.WriteString(line)
		n += int64(written)
		if err != nil {
			return n, err
		}
	}
	return n, bw.Flush()
}

// WriteFile replaces the file at path with the current samples, creating
// parent directories as needed.
func (l *IntensityLog) WriteFile(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create diagnostics dir: %w", err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create diagnostics file: %w", err)
	}

	if _, err := l.WriteTo(f); err != nil {
		f.Close()
		return fmt.Errorf("write diagnostics file: %w", err)
	}
	return f.Close()
}

// Summary returns count, mean and standard deviation of the held samples.
func (l *IntensityLog) Summary() Summary {
	l.mu.Lock()
	samples := l.samplesLocked()
	dropped := l.dropped
	l.mu.Unlock()

	s := Summary{Count: len(samples), Dropped: dropped}
	switch len(samples) {
	case 0:
	case 1:
		s.Mean = samples[0]
	default:
		s.Mean, s.StdDev = stat.MeanStdDev(samples, nil)
	}
	return s
}
