// Package pathexpr parses and evaluates dotted access expressions such as
// "props.items[2].name" that address locations inside an extracted payload.
// Expressions are parsed once at configuration load time; the rest of the
// pipeline works with the parsed Path form only.
package pathexpr

import (
	"fmt"
	"strconv"
	"strings"
)

// SegmentKind discriminates the three segment forms a path can contain.
type SegmentKind int

const (
	// SegmentKey selects a mapping entry by key.
	SegmentKey SegmentKind = iota
	// SegmentIndex selects a sequence element by position.
	SegmentIndex
	// SegmentWildcard matches any sequence index. Only valid in ignore
	// paths; extraction paths must address a single location.
	SegmentWildcard
)

// Segment is one step of a Path.
type Segment struct {
	Kind  SegmentKind
	Key   string
	Index int
}

// Key creates a mapping-key segment.
func Key(key string) Segment {
	return Segment{Kind: SegmentKey, Key: key}
}

// Index creates a sequence-index segment.
func Index(index int) Segment {
	return Segment{Kind: SegmentIndex, Index: index}
}

// Wildcard creates a segment that matches any sequence index.
func Wildcard() Segment {
	return Segment{Kind: SegmentWildcard}
}

// Path is a parsed access expression, outermost segment first.
// An empty Path addresses the payload root.
type Path []Segment

// Parse converts a textual expression into a Path.
//
// The grammar is a key, followed by any number of ".key", "[N]" or "[*]"
// steps, e.g. "props.pageProps.items[2].name" or "items[*].updatedAt".
// A path may also start with an index, e.g. "[0].title".
func Parse(expr string) (Path, error) {
	if expr == "" {
		return nil, fmt.Errorf("path expression is empty")
	}

	var path Path
	i := 0
	afterIndex := false
	for i < len(expr) {
		switch expr[i] {
		case '.':
			if len(path) == 0 {
				return nil, fmt.Errorf("path expression %q: leading '.'", expr)
			}
			i++
			if i >= len(expr) || expr[i] == '.' || expr[i] == '[' {
				return nil, fmt.Errorf("path expression %q: expected key after '.' at position %d", expr, i)
			}
			afterIndex = false
		case '[':
			end := strings.IndexByte(expr[i:], ']')
			if end < 0 {
				return nil, fmt.Errorf("path expression %q: unterminated '[' at position %d", expr, i)
			}
			content := expr[i+1 : i+end]
			if content == "*" {
				path = append(path, Wildcard())
			} else {
				index, err := strconv.Atoi(content)
				if err != nil || index < 0 {
					return nil, fmt.Errorf("path expression %q: invalid index %q", expr, content)
				}
				path = append(path, Index(index))
			}
			i += end + 1
			afterIndex = true
		default:
			if afterIndex {
				return nil, fmt.Errorf("path expression %q: expected '.' or '[' at position %d", expr, i)
			}
			j := i
			for j < len(expr) && expr[j] != '.' && expr[j] != '[' {
				j++
			}
			key := expr[i:j]
			if strings.ContainsRune(key, ']') {
				return nil, fmt.Errorf("path expression %q: unexpected ']' in key %q", expr, key)
			}
			path = append(path, Key(key))
			i = j
		}
	}
	return path, nil
}

// MustParse is like Parse but panics on error. Intended for
// compile-time-constant expressions such as built-in defaults.
func MustParse(expr string) Path {
	path, err := Parse(expr)
	if err != nil {
		panic(err)
	}
	return path
}

// ParseAll parses a list of expressions, failing on the first invalid one.
func ParseAll(exprs []string) ([]Path, error) {
	paths := make([]Path, 0, len(exprs))
	for _, expr := range exprs {
		path, err := Parse(expr)
		if err != nil {
			return nil, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// String renders the path in the same syntax Parse accepts.
func (p Path) String() string {
	var b strings.Builder
	for i, seg := range p {
		switch seg.Kind {
		case SegmentKey:
			if i > 0 {
				b.WriteByte('.')
			}
			b.WriteString(seg.Key)
		case SegmentIndex:
			b.WriteByte('[')
			b.WriteString(strconv.Itoa(seg.Index))
			b.WriteByte(']')
		case SegmentWildcard:
			b.WriteString("[*]")
		}
	}
	return b.String()
}

// Child returns a new Path with seg appended. The receiver is never
// modified, so parent paths can be shared freely during traversal.
func (p Path) Child(seg Segment) Path {
	child := make(Path, len(p)+1)
	copy(child, p)
	child[len(p)] = seg
	return child
}

// HasWildcard reports whether any segment is a wildcard.
func (p Path) HasWildcard() bool {
	for _, seg := range p {
		if seg.Kind == SegmentWildcard {
			return true
		}
	}
	return false
}

// Matches reports whether the receiver, treated as a pattern, matches the
// concrete path target. Wildcard segments match any index segment; all
// other segments must match exactly, including total length.
func (p Path) Matches(target Path) bool {
	if len(p) != len(target) {
		return false
	}
	for i, seg := range p {
		t := target[i]
		switch seg.Kind {
		case SegmentKey:
			if t.Kind != SegmentKey || t.Key != seg.Key {
				return false
			}
		case SegmentIndex:
			if t.Kind != SegmentIndex || t.Index != seg.Index {
				return false
			}
		case SegmentWildcard:
			if t.Kind != SegmentIndex {
				return false
			}
		}
	}
	return true
}
