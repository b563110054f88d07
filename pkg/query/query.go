// Package query projects an analysis result with a JMESPath expression.
package query

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/helmcode/text-analyzer/pkg/model"
	"github.com/jmespath/go-jmespath"
)

var (
	// pathSegment matches one step of a plain path: an optional field name,
	// bare or double quoted, followed by any number of [N] indexes.
	pathSegment = regexp.MustCompile(`^(?:([A-Za-z_][A-Za-z0-9_]*)|"([^"\\]*)")?((?:\[-?[0-9]+\])*)`)
	pathIndex   = regexp.MustCompile(`\[(-?[0-9]+)\]`)
)

// Apply evaluates expression against v. An empty expression returns v
// unchanged.
//
// Plain field and index paths such as meta.scores[0] are resolved on the
// ordered tree, so key order and number literals are kept. Other expressions
// go through the JMESPath evaluator, which works on maps and float64: objects
// in their results have sorted keys and numbers beyond float64 precision are
// rounded.
func Apply(v *model.Value, expression string) (*model.Value, error) {
	if expression == "" {
		return v, nil
	}

	jp, err := jmespath.Compile(expression)
	if err != nil {
		return nil, fmt.Errorf("invalid JMESPath expression '%s': %w", expression, err)
	}

	if result, ok := resolvePath(v, expression); ok {
		return result, nil
	}

	out, err := jp.Search(v.Interface())
	if err != nil {
		return nil, fmt.Errorf("failed to apply query: %w", err)
	}

	result, err := model.FromInterface(out)
	if err != nil {
		return nil, fmt.Errorf("failed to convert query result: %w", err)
	}
	return result, nil
}

// resolvePath walks a plain path against v. ok is false when expression is
// anything else. Missing fields and out of range indexes yield null.
func resolvePath(v *model.Value, expression string) (result *model.Value, ok bool) {
	rest := strings.TrimSpace(expression)
	cur := v
	first := true

	for {
		m := pathSegment.FindStringSubmatch(rest)
		if m == nil || m[0] == "" {
			return nil, false
		}

		switch {
		case m[1] != "":
			cur = cur.Get(m[1])
		case strings.HasPrefix(m[0], `"`):
			cur = cur.Get(m[2])
		case !first:
			// a.[0] is a multiselect list, not an index
			return nil, false
		}

		for _, idx := range pathIndex.FindAllStringSubmatch(m[3], -1) {
			n, err := strconv.Atoi(idx[1])
			if err != nil {
				return nil, false
			}
			cur = index(cur, n)
		}

		rest = rest[len(m[0]):]
		if rest == "" {
			break
		}
		if rest[0] != '.' {
			return nil, false
		}
		rest = rest[1:]
		first = false
	}

	if cur == nil {
		return model.Null(), true
	}
	return cur, true
}

func index(v *model.Value, n int) *model.Value {
	if v == nil || v.Kind != model.KindArray {
		return nil
	}
	if n < 0 {
		n += len(v.Items)
	}
	if n < 0 || n >= len(v.Items) {
		return nil
	}
	return v.Items[n]
}
