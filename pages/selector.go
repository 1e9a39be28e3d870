package pages

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/tsawler/layoutseq/model"
)

// Selector is one page selector in its textual form. Integers decoded from
// YAML or JSON are stored as their decimal string.
type Selector string

// Int returns the selector for a single page number
func Int(n int) Selector {
	return Selector(strconv.Itoa(n))
}

// UnmarshalYAML accepts an integer or a string
func (s *Selector) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var v interface{}
	if err := unmarshal(&v); err != nil {
		return err
	}
	sel, err := fromValue(v)
	if err != nil {
		return err
	}
	*s = sel
	return nil
}

// UnmarshalJSON accepts an integer or a string
func (s *Selector) UnmarshalJSON(data []byte) error {
	var v interface{}
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("decoding page selector: %w", err)
	}
	sel, err := fromValue(v)
	if err != nil {
		return err
	}
	*s = sel
	return nil
}

func fromValue(v interface{}) (Selector, error) {
	switch t := v.(type) {
	case string:
		return Selector(t), nil
	case int:
		return Int(t), nil
	case int64:
		return Selector(strconv.FormatInt(t, 10)), nil
	case uint64:
		return Selector(strconv.FormatUint(t, 10)), nil
	case float64:
		if t != float64(int(t)) {
			return "", invalid(fmt.Sprint(t), "page numbers must be integers")
		}
		return Int(int(t)), nil
	}
	return "", invalid(fmt.Sprint(v), fmt.Sprintf("unsupported selector type %T", v))
}

// Span is a parsed selector. Open ends are marked by HasLo/HasHi.
type Span struct {
	Lo, Hi       int
	HasLo, HasHi bool
	Single       bool
}

// Parse checks a selector against the grammar
func Parse(sel Selector) (Span, error) {
	raw := strings.TrimSpace(string(sel))
	if !strings.Contains(raw, ":") {
		n, err := parseEndpoint(raw, sel)
		if err != nil {
			return Span{}, err
		}
		return Span{Lo: n, Hi: n, HasLo: true, HasHi: true, Single: true}, nil
	}

	parts := strings.Split(raw, ":")
	if len(parts) != 2 {
		return Span{}, invalid(string(sel), "expected a:b, a: or :b")
	}
	lo, hi := strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])
	if lo == "" && hi == "" {
		return Span{}, invalid(string(sel), "range needs at least one endpoint")
	}

	var span Span
	if lo != "" {
		n, err := parseEndpoint(lo, sel)
		if err != nil {
			return Span{}, err
		}
		span.Lo, span.HasLo = n, true
	}
	if hi != "" {
		n, err := parseEndpoint(hi, sel)
		if err != nil {
			return Span{}, err
		}
		span.Hi, span.HasHi = n, true
	}
	return span, nil
}

func parseEndpoint(s string, sel Selector) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, invalid(string(sel), fmt.Sprintf("%q is not an integer", s))
	}
	if n == 0 {
		return 0, invalid(string(sel), "pages are numbered from 1")
	}
	return n, nil
}

// bounds turns the span into an inclusive [lo, hi] interval for last page n
func (s Span) bounds(n int) (int, int) {
	abs := func(k int) int {
		if k < 0 {
			return n + 1 + k
		}
		return k
	}

	switch {
	case s.HasLo && s.HasHi:
		lo, hi := abs(s.Lo), abs(s.Hi)
		if (s.Lo < 0) == (s.Hi < 0) && lo > hi {
			lo, hi = hi, lo
		}
		return lo, hi
	case s.HasLo:
		return abs(s.Lo), n
	default:
		return 1, abs(s.Hi)
	}
}

// Resolve returns the available pages matched by any selector, ascending and
// without duplicates. Negative endpoints count back from the highest
// available page. An empty selector list selects every available page.
func Resolve(selectors []Selector, available []int) ([]int, error) {
	spans := make([]Span, 0, len(selectors))
	for _, sel := range selectors {
		span, err := Parse(sel)
		if err != nil {
			return nil, err
		}
		spans = append(spans, span)
	}

	pages := uniqueSorted(available)
	if len(spans) == 0 || len(pages) == 0 {
		return pages, nil
	}

	last := pages[len(pages)-1]
	var out []int
	for _, p := range pages {
		for _, span := range spans {
			lo, hi := span.bounds(last)
			if p >= lo && p <= hi {
				out = append(out, p)
				break
			}
		}
	}
	return out, nil
}

func uniqueSorted(in []int) []int {
	if len(in) == 0 {
		return nil
	}
	out := make([]int, len(in))
	copy(out, in)
	sort.Ints(out)
	n := 1
	for _, p := range out[1:] {
		if p != out[n-1] {
			out[n] = p
			n++
		}
	}
	return out[:n]
}

func invalid(value, reason string) error {
	return &model.ConfigurationError{Key: "page_num", Value: value, Reason: reason}
}
