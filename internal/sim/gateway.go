package sim

import (
	"errors"
	"fmt"
	"math"
	"reflect"

	"lifecast/internal/core"
)

// PatternSize is the fixed edge length of a submitted pattern mask.
const PatternSize = 5

// maxOffset bounds offsets converted to int; anything larger cannot reach a
// cell of any grid this process can allocate.
const maxOffset = 1 << 30

// ErrValidation is wrapped by every pattern rejection.
var ErrValidation = errors.New("invalid pattern")

// Rejection reasons reported in ValidationError.Reason.
const (
	ReasonNonIntegerOffset = "non_integer_offset"
	ReasonMalformedShape   = "malformed_shape"
)

// ValidationError describes why a submission was dropped.
type ValidationError struct {
	Reason string
	Detail string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Reason, e.Detail)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// Submission is a decoded create_pattern request. Fields hold whatever the
// codec produced so that each malformed part maps to its own rejection
// reason: Pattern is a list of rows (any slice or array kind), offsets are
// numbers or nil when missing. Pointers and interfaces are followed.
type Submission struct {
	Pattern   any
	OffsetRow any
	OffsetCol any
}

// Enqueuer accepts validated injections.
type Enqueuer interface {
	Enqueue(injections ...core.Injection)
}

// Gateway validates pattern submissions and hands them to the queue.
type Gateway struct {
	queue Enqueuer
	rows  int
	cols  int
}

// NewGateway returns a gateway clipping against dims and feeding queue.
func NewGateway(queue Enqueuer, dims core.Dimensions) *Gateway {
	return &Gateway{queue: queue, rows: dims.Rows, cols: dims.Cols}
}

// Submit validates s, decomposes its mask into injections, drops the ones
// falling outside the grid and enqueues the rest as a single batch. Only mask
// cells equal to 1 produce an injection. On error nothing is enqueued.
func (g *Gateway) Submit(s Submission) ([]core.Injection, error) {
	offsetRow, err := integerOffset("offsetRow", s.OffsetRow)
	if err != nil {
		return nil, err
	}
	offsetCol, err := integerOffset("offsetCol", s.OffsetCol)
	if err != nil {
		return nil, err
	}
	mask, err := maskOnes(s.Pattern)
	if err != nil {
		return nil, err
	}

	var injections []core.Injection
	for i := range mask {
		for j, one := range mask[i] {
			if !one {
				continue
			}
			row := int64(i) + offsetRow
			col := int64(j) + offsetCol
			if row < 0 || row >= int64(g.rows) || col < 0 || col >= int64(g.cols) {
				continue
			}
			injections = append(injections, core.Injection{Row: int(row), Col: int(col), State: core.Alive})
		}
	}
	g.queue.Enqueue(injections...)
	return injections, nil
}

// maskOnes checks that pattern is exactly PatternSize rows of PatternSize
// cells and reports which cells are numerically 1. Cells of any other value
// or type are not an error.
func maskOnes(pattern any) ([PatternSize][PatternSize]bool, error) {
	var mask [PatternSize][PatternSize]bool
	rows := indirect(reflect.ValueOf(pattern))
	if !isList(rows) || rows.Len() != PatternSize {
		return mask, &ValidationError{Reason: ReasonMalformedShape, Detail: fmt.Sprintf("pattern has %s, want %d rows", describeList(rows), PatternSize)}
	}
	for i := 0; i < PatternSize; i++ {
		row := indirect(rows.Index(i))
		if !isList(row) || row.Len() != PatternSize {
			return mask, &ValidationError{Reason: ReasonMalformedShape, Detail: fmt.Sprintf("pattern row %d has %s, want %d columns", i, describeList(row), PatternSize)}
		}
		for j := 0; j < PatternSize; j++ {
			v, ok := number(row.Index(j))
			mask[i][j] = ok && v == 1
		}
	}
	return mask, nil
}

func integerOffset(name string, raw any) (int64, error) {
	v := indirect(reflect.ValueOf(raw))
	if !v.IsValid() {
		return 0, &ValidationError{Reason: ReasonNonIntegerOffset, Detail: name + " is missing"}
	}
	f, ok := number(v)
	if !ok {
		return 0, &ValidationError{Reason: ReasonNonIntegerOffset, Detail: fmt.Sprintf("%s has type %s", name, v.Type())}
	}
	if math.IsNaN(f) || math.IsInf(f, 0) || math.Trunc(f) != f {
		return 0, &ValidationError{Reason: ReasonNonIntegerOffset, Detail: fmt.Sprintf("%s=%v is not an integer", name, f)}
	}
	if f > maxOffset {
		f = maxOffset
	} else if f < -maxOffset {
		f = -maxOffset
	}
	return int64(f), nil
}

// indirect follows pointers and interfaces. A nil along the way yields the
// zero Value.
func indirect(v reflect.Value) reflect.Value {
	for v.IsValid() && (v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface) {
		if v.IsNil() {
			return reflect.Value{}
		}
		v = v.Elem()
	}
	return v
}

func isList(v reflect.Value) bool {
	return v.IsValid() && (v.Kind() == reflect.Slice || v.Kind() == reflect.Array)
}

func describeList(v reflect.Value) string {
	if !isList(v) {
		return "no list"
	}
	return fmt.Sprintf("%d entries", v.Len())
}

// number converts any integer or float kind to float64.
func number(v reflect.Value) (float64, bool) {
	v = indirect(v)
	switch {
	case !v.IsValid():
		return 0, false
	case v.CanInt():
		return float64(v.Int()), true
	case v.CanUint():
		return float64(v.Uint()), true
	case v.CanFloat():
		return v.Float(), true
	}
	return 0, false
}
