package workload

import (
	"bufio"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/framesim/framesim/sim/internal/fileio"
)

// Access trace format: CSV whose header row has several columns, one of them
// named "key" (others such as "seq" are ignored), or a plain file with one
// key per line. Plain keys are opaque: commas and quotes are kept, and a
// first line that merely reads "key" is a key, not a header. A ".zst" suffix
// means the file is zstd-compressed. Blank lines are skipped, so an empty key
// is only expressible as a quoted CSV field.
var accessTraceColumns = []string{"seq", "key"}

// maxTraceLine bounds one line of a plain trace.
const maxTraceLine = 1 << 20

// LoadAccessTrace reads an access trace file.
func LoadAccessTrace(path string) ([]string, error) {
	r, err := fileio.Open(path)
	if err != nil {
		return nil, fmt.Errorf("reading access trace: %w", err)
	}
	defer func() { _ = r.Close() }()
	return ReadAccessTrace(r)
}

// ReadAccessTrace parses an access trace from r. The format is decided once,
// from the first line.
func ReadAccessTrace(r io.Reader) ([]string, error) {
	br := bufio.NewReader(r)
	first, err := br.ReadString('\n')
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("reading access trace: %w", err)
	}
	if header, keyCol, ok := csvHeader(first); ok {
		return readCSVTrace(br, len(header), keyCol)
	}
	return readPlainTrace(io.MultiReader(strings.NewReader(first), br))
}

// csvHeader reports whether line is a CSV header with a "key" column.
func csvHeader(line string) ([]string, int, bool) {
	reader := csv.NewReader(strings.NewReader(line))
	reader.LazyQuotes = true
	header, err := reader.Read()
	if err != nil || len(header) < 2 {
		return nil, 0, false
	}
	col := headerKeyColumn(header)
	return header, col, col >= 0
}

func readCSVTrace(r io.Reader, columns, keyCol int) ([]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = columns
	reader.LazyQuotes = true

	var keys []string
	for {
		row, err := reader.Read()
		if err == io.EOF {
			return keys, nil
		}
		if err != nil {
			// the header line is not part of this reader's count
			return nil, fmt.Errorf("reading access trace row %d: %w", len(keys)+1, err)
		}
		keys = append(keys, row[keyCol])
	}
}

func readPlainTrace(r io.Reader) ([]string, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxTraceLine)
	var keys []string
	for scanner.Scan() {
		key := strings.TrimSuffix(scanner.Text(), "\r")
		if key == "" {
			continue
		}
		keys = append(keys, key)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading access trace line %d: %w", len(keys)+1, err)
	}
	return keys, nil
}

func headerKeyColumn(row []string) int {
	for i, field := range row {
		if strings.EqualFold(strings.TrimSpace(field), "key") {
			return i
		}
	}
	return -1
}

// ExportAccessTrace writes keys as a CSV access trace with seq,key columns.
func ExportAccessTrace(path string, keys []string) error {
	w, err := fileio.Create(path)
	if err != nil {
		return fmt.Errorf("creating access trace: %w", err)
	}
	if err := WriteAccessTrace(w, keys); err != nil {
		_ = w.Close()
		return err
	}
	return w.Close()
}

// WriteAccessTrace writes keys in CSV access trace format to w.
func WriteAccessTrace(w io.Writer, keys []string) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(accessTraceColumns); err != nil {
		return fmt.Errorf("writing CSV header: %w", err)
	}
	for i, key := range keys {
		if err := writer.Write([]string{strconv.Itoa(i + 1), key}); err != nil {
			return fmt.Errorf("writing CSV row %d: %w", i+1, err)
		}
	}
	writer.Flush()
	return writer.Error()
}

// ReplaySource emits a recorded key sequence, optionally paced.
type ReplaySource struct {
	keys     []string
	interval time.Duration
}

// NewReplaySource replays keys with interval between accesses (0 = no pacing).
func NewReplaySource(keys []string, interval time.Duration) *ReplaySource {
	return &ReplaySource{keys: keys, interval: interval}
}

// Run emits every key in order, stopping early when ctx is done.
func (s *ReplaySource) Run(ctx context.Context, emit func(key string)) error {
	for i, key := range s.keys {
		if i > 0 && !wait(ctx, s.interval) {
			return nil
		}
		if ctx.Err() != nil {
			return nil
		}
		emit(key)
	}
	return nil
}
