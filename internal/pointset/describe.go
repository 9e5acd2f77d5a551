package pointset

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"graph-decoder/internal/critical"
)

const (
	xInterceptsPrefix = "X-intercepts:"
	yInterceptPrefix  = "Y-intercept:"
	minimumPrefix     = "Local minimum:"
	maximumPrefix     = "Local maximum:"

	// Written by the generator when the symbolic solver gave up.
	solverErrorPrefix = "Error finding critical points:"
)

// Describe renders critical points as description strings. All X
// intercepts share one line, followed by Y intercepts and then extrema in
// their original order. Values are rounded to six decimals.
func Describe(cps []critical.Point) []string {
	var xs []string
	var yInts, extrema []string
	for _, cp := range cps {
		switch cp.Kind {
		case critical.XIntercept:
			xs = append(xs, formatFloat(cp.X))
		case critical.YIntercept:
			yInts = append(yInts, fmt.Sprintf("%s %s", yInterceptPrefix, formatFloat(cp.Y)))
		case critical.Minimum:
			extrema = append(extrema, fmt.Sprintf("%s (%s, %s)", minimumPrefix, formatFloat(cp.X), formatFloat(cp.Y)))
		case critical.Maximum:
			extrema = append(extrema, fmt.Sprintf("%s (%s, %s)", maximumPrefix, formatFloat(cp.X), formatFloat(cp.Y)))
		}
	}

	var out []string
	if len(xs) > 0 {
		out = append(out, fmt.Sprintf("%s [%s]", xInterceptsPrefix, strings.Join(xs, ", ")))
	}
	out = append(out, yInts...)
	return append(out, extrema...)
}

// ParseDescription parses one description string into critical points.
// An X-intercepts line may hold any number of points. A solver error note
// carries no points and is not an error.
func ParseDescription(d string) ([]critical.Point, error) {
	d = strings.TrimSpace(d)
	switch {
	case strings.HasPrefix(d, solverErrorPrefix):
		return nil, nil

	case strings.HasPrefix(d, xInterceptsPrefix):
		body, err := enclosed(strings.TrimPrefix(d, xInterceptsPrefix), "[", "]")
		if err != nil {
			return nil, fmt.Errorf("%q: %w", d, err)
		}
		if strings.TrimSpace(body) == "" {
			return nil, nil
		}
		var out []critical.Point
		for _, f := range strings.Split(body, ",") {
			x, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
			if err != nil {
				return nil, fmt.Errorf("%q: %w", d, err)
			}
			out = append(out, critical.XAt(x))
		}
		return out, nil

	case strings.HasPrefix(d, yInterceptPrefix):
		y, err := strconv.ParseFloat(strings.TrimSpace(strings.TrimPrefix(d, yInterceptPrefix)), 64)
		if err != nil {
			return nil, fmt.Errorf("%q: %w", d, err)
		}
		return []critical.Point{critical.YAt(y)}, nil

	case strings.HasPrefix(d, minimumPrefix):
		x, y, err := parsePair(strings.TrimPrefix(d, minimumPrefix))
		if err != nil {
			return nil, fmt.Errorf("%q: %w", d, err)
		}
		return []critical.Point{critical.Min(x, y)}, nil

	case strings.HasPrefix(d, maximumPrefix):
		x, y, err := parsePair(strings.TrimPrefix(d, maximumPrefix))
		if err != nil {
			return nil, fmt.Errorf("%q: %w", d, err)
		}
		return []critical.Point{critical.Max(x, y)}, nil
	}
	return nil, fmt.Errorf("unrecognized critical point %q", d)
}

func parsePair(s string) (x, y float64, err error) {
	body, err := enclosed(s, "(", ")")
	if err != nil {
		return 0, 0, err
	}
	parts := strings.Split(body, ",")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("expected 2 values, got %d", len(parts))
	}
	if x, err = strconv.ParseFloat(strings.TrimSpace(parts[0]), 64); err != nil {
		return 0, 0, err
	}
	if y, err = strconv.ParseFloat(strings.TrimSpace(parts[1]), 64); err != nil {
		return 0, 0, err
	}
	return x, y, nil
}

func enclosed(s, open, close string) (string, error) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, open) || !strings.HasSuffix(s, close) {
		return "", fmt.Errorf("expected %s...%s", open, close)
	}
	return s[len(open) : len(s)-len(close)], nil
}

// formatFloat rounds to six decimals and always keeps a decimal point,
// so 2 is written as 2.0.
func formatFloat(v float64) string {
	v = math.Round(v*1e6) / 1e6
	if v == 0 {
		v = 0 // drop negative zero
	}
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.ContainsAny(s, ".eEnN") {
		s += ".0"
	}
	return s
}
