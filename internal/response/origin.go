package response

import (
	"fmt"

	"mederror/internal/domain"
)

// OriginCursor walks the original input rows in lock-step with response
// blocks. Each block advances it exactly once, whether or not it parsed.
type OriginCursor struct {
	rows [][]string
	pos  int
}

// NewOriginCursor creates a cursor over rows. Rows are already split into cells.
func NewOriginCursor(rows [][]string) *OriginCursor {
	return &OriginCursor{rows: rows}
}

// Next returns the cells of the next original row, or ErrOriginExhausted.
func (c *OriginCursor) Next() ([]string, error) {
	if c.pos >= len(c.rows) {
		return nil, domain.ErrOriginExhausted
	}
	row := c.rows[c.pos]
	c.pos++
	return append([]string(nil), row...), nil
}

// Consumed returns how many rows have been handed out.
func (c *OriginCursor) Consumed() int { return c.pos }

// Remaining returns how many rows have not been handed out.
func (c *OriginCursor) Remaining() int { return len(c.rows) - c.pos }

// MergeError reports a block/row count disagreement found while merging.
type MergeError struct {
	Blocks int
	Rows   int
	Err    error
}

func (e *MergeError) Error() string {
	return fmt.Sprintf("merging %d response blocks with %d original rows: %v", e.Blocks, e.Rows, e.Err)
}

func (e *MergeError) Unwrap() error {
	return e.Err
}
