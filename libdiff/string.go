package libdiff

import (
	"strings"

	diffpatch "github.com/sergi/go-diff/diffmatchpatch"
)

// SpanOp classifies a span of text in a diff.
type SpanOp int

const (
	Equal SpanOp = iota
	Added
	Removed
)

// Span is a run of text that is kept, added or removed.
type Span struct {
	Op   SpanOp
	Text string
}

// Strings diffs two strings character by character, cleaned up to
// semantically meaningful spans.
func Strings(from, to string) []Span {
	dmp := diffpatch.New()
	multiLine := strings.Contains(from, "\n") && strings.Contains(to, "\n")
	diffs := dmp.DiffMain(from, to, multiLine)
	diffs = dmp.DiffCleanupSemantic(diffs)
	return spans(diffs)
}

// Lines diffs two texts line by line. Each span holds one or more whole
// lines.
func Lines(from, to string) []Span {
	dmp := diffpatch.New()
	a, b, lines := dmp.DiffLinesToRunes(from, to)
	diffs := dmp.DiffMainRunes(a, b, false)
	return spans(dmp.DiffCharsToLines(diffs, lines))
}

func spans(diffs []diffpatch.Diff) []Span {
	res := make([]Span, 0, len(diffs))
	for _, d := range diffs {
		var op SpanOp
		switch d.Type {
		case diffpatch.DiffInsert:
			op = Added
		case diffpatch.DiffDelete:
			op = Removed
		default:
			op = Equal
		}
		res = append(res, Span{Op: op, Text: d.Text})
	}
	return res
}

// Changed reports whether any span is an addition or removal.
func Changed(spans []Span) bool {
	for _, s := range spans {
		if s.Op != Equal {
			return true
		}
	}
	return false
}
