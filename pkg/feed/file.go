package feed

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-logr/logr"

	"github.com/anggasct/crossway"
	logutil "github.com/anggasct/crossway/pkg/logging"
)

// debounceDelay wait for writes to settle before reading lane files
const debounceDelay = 250 * time.Millisecond

// LaneFile returns the path of the file feeding a lane
func LaneFile(dir, lane string) string {
	return filepath.Join(dir, lane+".txt")
}

// EnsureLaneFiles creates dir and an empty file per lane where missing
func EnsureLaneFiles(dir string, lanes []string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create data directory %q: %w", dir, err)
	}
	for _, lane := range lanes {
		f, err := os.OpenFile(LaneFile(dir, lane), os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			return fmt.Errorf("failed to create lane file for %s: %w", lane, err)
		}
		_ = f.Close()
	}
	return nil
}

// AppendVehicles appends one vehicle id per line to a lane file
func AppendVehicles(dir, lane string, ids []string) error {
	f, err := os.OpenFile(LaneFile(dir, lane), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open lane file for %s: %w", lane, err)
	}
	defer f.Close()

	var b strings.Builder
	for _, id := range ids {
		b.WriteString(id)
		b.WriteByte('\n')
	}
	if _, err := f.WriteString(b.String()); err != nil {
		return fmt.Errorf("failed to append to lane file for %s: %w", lane, err)
	}
	return nil
}

// FileSource tails one text file per lane. Each complete, non-blank line
// appended to <dir>/<lane>.txt becomes an arrival on that lane.
type FileSource struct {
	dir     string
	lanes   []string
	offsets map[string]int64
	logger  logr.Logger
}

// NewFileSource creates a file source, creating missing lane files
func NewFileSource(dir string, lanes []string, logger logr.Logger) (*FileSource, error) {
	if len(lanes) == 0 {
		lanes = DefaultLanes
	}
	if err := EnsureLaneFiles(dir, lanes); err != nil {
		return nil, err
	}
	return &FileSource{
		dir:     dir,
		lanes:   lanes,
		offsets: make(map[string]int64, len(lanes)),
		logger:  logger.WithName("file-source").WithValues("dir", dir),
	}, nil
}

// Poll reads the lines appended since the previous poll. A trailing line
// without a newline is left for the next poll.
func (s *FileSource) Poll() ([]Arrival, error) {
	var arrivals []Arrival
	for _, lane := range s.lanes {
		lines, err := s.readLane(lane)
		if err != nil {
			return arrivals, err
		}
		for _, line := range lines {
			arrivals = append(arrivals, Arrival{LaneID: lane, Vehicle: crossway.Vehicle(line)})
		}
	}
	return arrivals, nil
}

func (s *FileSource) readLane(lane string) ([]string, error) {
	f, err := os.Open(LaneFile(s.dir, lane))
	if err != nil {
		return nil, fmt.Errorf("failed to open lane file for %s: %w", lane, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat lane file for %s: %w", lane, err)
	}

	offset := s.offsets[lane]
	if info.Size() < offset {
		s.logger.V(logutil.VERBOSE).Info("Lane file truncated, reading from start", "lane", lane)
		offset = 0
	}
	if _, err := f.Seek(offset, io.SeekStart); err != nil {
		return nil, fmt.Errorf("failed to seek lane file for %s: %w", lane, err)
	}

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read lane file for %s: %w", lane, err)
	}

	end := bytes.LastIndexByte(data, '\n')
	if end < 0 {
		s.offsets[lane] = offset
		return nil, nil
	}
	s.offsets[lane] = offset + int64(end) + 1

	var lines []string
	for _, line := range strings.Split(string(data[:end]), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return lines, nil
}

// isLaneFile reports whether path names one of the watched lane files
func (s *FileSource) isLaneFile(path string) bool {
	for _, lane := range s.lanes {
		if filepath.Base(path) == lane+".txt" {
			return true
		}
	}
	return false
}

// Run emits the current file contents, then watches the directory and
// emits appended lines until ctx is cancelled
func (s *FileSource) Run(ctx context.Context, out chan<- Arrival) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create lane file watcher: %w", err)
	}
	defer w.Close()

	if err := w.Add(s.dir); err != nil {
		return fmt.Errorf("failed to watch %q: %w", s.dir, err)
	}

	traceLogger := s.logger.V(logutil.TRACE)
	reload := make(chan struct{}, 1)
	var debounceTimer *time.Timer
	defer func() {
		if debounceTimer != nil {
			debounceTimer.Stop()
		}
	}()

	poll := func() bool {
		arrivals, err := s.Poll()
		if err != nil {
			s.logger.Error(err, "Failed to read lane files")
		}
		if len(arrivals) > 0 {
			s.logger.V(logutil.DEBUG).Info("Read arrivals", "count", len(arrivals))
		}
		return emit(ctx, out, arrivals)
	}

	if !poll() {
		return nil
	}

	for {
		select {
		case ev := <-w.Events:
			traceLogger.Info("Lane file changed", "event", ev)

			if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 || !s.isLaneFile(ev.Name) {
				continue
			}

			// Debounce: reset the timer if we get another event
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(debounceDelay, func() {
				select {
				case reload <- struct{}{}:
				default:
				}
			})

		case <-reload:
			if !poll() {
				return nil
			}

		case err := <-w.Errors:
			if err != nil {
				s.logger.Error(err, "Lane file watcher failed")
			}

		case <-ctx.Done():
			return nil
		}
	}
}
