// Package battlelog reads battle records stored one JSON object per line.
package battlelog

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	json "github.com/goccy/go-json"

	"github.com/showdown-ml/battle-features/internal/models"
)

const (
	initialBuffer = 64 * 1024
	// MaxLineSize bounds one encoded battle.
	MaxLineSize = 8 * 1024 * 1024
)

// LineError is a record that failed to decode or validate.
type LineError struct {
	Line int
	Err  error
}

func (e *LineError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

func (e *LineError) Unwrap() error { return e.Err }

// Reader decodes battles one line at a time. Blank lines are skipped.
type Reader struct {
	sc   *bufio.Scanner
	line int
}

func NewReader(r io.Reader) *Reader {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, initialBuffer), MaxLineSize)
	return &Reader{sc: sc}
}

// Next returns the next battle, io.EOF at the end of input, or a
// *LineError for a malformed record. Reading may continue after a
// *LineError; any other error is final.
func (r *Reader) Next() (models.Battle, error) {
	for r.sc.Scan() {
		r.line++
		raw := bytes.TrimSpace(r.sc.Bytes())
		if len(raw) == 0 {
			continue
		}
		var b models.Battle
		if err := json.Unmarshal(raw, &b); err != nil {
			return models.Battle{}, &LineError{Line: r.line, Err: err}
		}
		if err := models.ValidateBattle(&b); err != nil {
			return models.Battle{}, &LineError{Line: r.line, Err: err}
		}
		return b, nil
	}
	if err := r.sc.Err(); err != nil {
		return models.Battle{}, fmt.Errorf("line %d: %w", r.line+1, err)
	}
	return models.Battle{}, io.EOF
}

// Line returns the number of the last line read.
func (r *Reader) Line() int { return r.line }

// Read decodes every battle of r. The first malformed line aborts the read.
func Read(ctx context.Context, r io.Reader) ([]models.Battle, error) {
	var (
		out []models.Battle
		rd  = NewReader(r)
	)
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		b, err := rd.Next()
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
}
