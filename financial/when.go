package financial

import (
	"github.com/warp/tvm-engine/ndarray"
)

// When is the payment timing code used by every formula.
type When int8

const (
	// End means payments are due at the close of each period.
	End When = 0
	// Begin means payments are due at the start of each period.
	Begin When = 1
)

func (w When) String() string {
	switch w {
	case End:
		return "end"
	case Begin:
		return "begin"
	default:
		return "invalid"
	}
}

var whenSpellings = map[string]When{
	"end":       End,
	"e":         End,
	"finish":    End,
	"begin":     Begin,
	"b":         Begin,
	"start":     Begin,
	"beginning": Begin,
}

// AtEnd and AtBeginning are ready-made scalar timing arrays.
func AtEnd() *ndarray.Array[When]       { return ndarray.Scalar(End) }
func AtBeginning() *ndarray.Array[When] { return ndarray.Scalar(Begin) }

// ParseWhen normalises a timing argument into the numeric code domain.
//
// Accepted: nil (End), a When, a recognised string, the integers 0 and 1,
// slices of those, or an *ndarray.Array[When], which is returned unchanged.
// Strings are case-sensitive.
func ParseWhen(v any) (*ndarray.Array[When], error) {
	switch x := v.(type) {
	case nil:
		return AtEnd(), nil
	case *ndarray.Array[When]:
		return x, nil
	case []When:
		return parseSeq(len(x), func(i int) any { return x[i] })
	case []string:
		return parseSeq(len(x), func(i int) any { return x[i] })
	case []int:
		return parseSeq(len(x), func(i int) any { return x[i] })
	case []any:
		return parseSeq(len(x), func(i int) any { return x[i] })
	default:
		w, err := whenOf(v, -1)
		if err != nil {
			return nil, err
		}
		return ndarray.Scalar(w), nil
	}
}

func parseSeq(n int, at func(int) any) (*ndarray.Array[When], error) {
	codes := make([]When, n)
	for i := range codes {
		w, err := whenOf(at(i), i)
		if err != nil {
			return nil, err
		}
		codes[i] = w
	}
	return ndarray.Vector(codes...), nil
}

func whenOf(v any, index int) (When, error) {
	switch x := v.(type) {
	case When:
		if x == End || x == Begin {
			return x, nil
		}
	case string:
		if w, ok := whenSpellings[x]; ok {
			return w, nil
		}
	case int:
		return codeOf(int64(x), v, index)
	case int32:
		return codeOf(int64(x), v, index)
	case int64:
		return codeOf(x, v, index)
	case float64:
		// JSON numbers decode as float64.
		if x == 0 || x == 1 {
			return When(x), nil
		}
	}
	return End, &WhenError{Value: v, Index: index}
}

func codeOf(n int64, v any, index int) (When, error) {
	switch n {
	case 0:
		return End, nil
	case 1:
		return Begin, nil
	}
	return End, &WhenError{Value: v, Index: index}
}
