package ledger

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"fintrack/internal/core"
)

// Store is the append-only ledger file.
type Store struct {
	path  string
	codec *Codec
}

// NewStore returns a store backed by path, decoding with DefaultCodec.
func NewStore(path string) *Store {
	return &Store{path: path, codec: DefaultCodec}
}

// Path returns the backing file path.
func (s *Store) Path() string { return s.path }

// LoadStats describes one load.
type LoadStats struct {
	Lines   int
	Loaded  int
	Skipped int
}

// Load reads the whole store in file order. A missing file is an empty
// ledger. Malformed lines are dropped; only I/O failures return an error.
func (s *Store) Load(ctx context.Context) (core.Ledger, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(s.path)
	if errors.Is(err, os.ErrNotExist) {
		slog.DebugContext(ctx, "Ledger store missing, starting empty", "path", s.path)
		return core.Ledger{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open ledger: %w", err)
	}
	defer f.Close()

	ledger, stats, err := s.codec.LoadFrom(f)
	if err != nil {
		return nil, fmt.Errorf("read ledger %s: %w", s.path, err)
	}
	if stats.Skipped > 0 {
		slog.WarnContext(ctx, "Skipped malformed ledger lines",
			"path", s.path,
			"skipped", stats.Skipped,
			"loaded", stats.Loaded)
	}
	return ledger, nil
}

// LoadFrom decodes every non-blank line of r.
func (c *Codec) LoadFrom(r io.Reader) (core.Ledger, LoadStats, error) {
	var (
		stats  LoadStats
		ledger = core.Ledger{}
		br     = bufio.NewReader(r)
	)
	for {
		line, err := br.ReadString('\n')
		if line != "" {
			stats.Lines++
			if tx, ok := c.Decode(line); ok {
				ledger = append(ledger, tx)
				stats.Loaded++
			} else if !isBlank(line) {
				stats.Skipped++
			}
		}
		if errors.Is(err, io.EOF) {
			return ledger, stats, nil
		}
		if err != nil {
			return nil, stats, err
		}
	}
}

// Append writes one encoded transaction at the end of the store, creating
// the file and its directory on first use. A previous write that stopped
// before its newline is terminated first so the new record starts on its own
// line.
func (s *Store) Append(ctx context.Context, tx core.Transaction) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if dir := filepath.Dir(s.path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create ledger directory: %w", err)
		}
	}
	f, err := os.OpenFile(s.path, os.O_RDWR|os.O_APPEND|os.O_CREATE, 0o644)
	if err != nil {
		return fmt.Errorf("open ledger for append: %w", err)
	}
	defer f.Close()

	record := Encode(tx)
	unterminated, err := endsWithoutNewline(f)
	if err != nil {
		return fmt.Errorf("inspect ledger tail: %w", err)
	}
	if unterminated {
		record = "\n" + record
	}
	if _, err := io.WriteString(f, record); err != nil {
		return fmt.Errorf("append ledger record: %w", err)
	}
	return f.Sync()
}

func endsWithoutNewline(f *os.File) (bool, error) {
	info, err := f.Stat()
	if err != nil {
		return false, err
	}
	if info.Size() == 0 {
		return false, nil
	}
	last := make([]byte, 1)
	if _, err := f.ReadAt(last, info.Size()-1); err != nil {
		return false, err
	}
	return last[0] != '\n', nil
}

func isBlank(line string) bool {
	for _, r := range line {
		if r != ' ' && r != '\t' && r != '\n' && r != '\r' {
			return false
		}
	}
	return true
}
