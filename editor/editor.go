// Package editor rewrites text-showing operations against a compiled
// replacement vocabulary. It reconstructs logical words from fragmented
// show-text groups, applies replacements, and redistributes the result so
// fragment boundaries and positioning adjustments survive untouched.
package editor

import (
	"context"
	"sync"

	"github.com/shekharashishraj/codex-code-glyph/contentstream"
	"github.com/shekharashishraj/codex-code-glyph/observability"
	"github.com/shekharashishraj/codex-code-glyph/vocab"
)

// Editor rewrites page operation lists. Implementations are safe for
// concurrent use across pages; the compiled vocabulary is the only shared
// state and is never mutated.
type Editor interface {
	// RewritePage runs the per-group pass and then the cross-group window
	// pass over one page's operations. The returned Result carries the
	// modified flag and the structured diagnostics; the input list is never
	// mutated.
	RewritePage(ctx context.Context, ops []contentstream.Operation) ([]contentstream.Operation, *Result, error)

	// RewritePages rewrites independent pages concurrently.
	RewritePages(ctx context.Context, pages [][]contentstream.Operation) ([][]contentstream.Operation, []*Result, error)
}

// AppliedMatch records one replacement applied to a page.
type AppliedMatch struct {
	Op          int // operation index of the (first) rewritten group
	Original    string
	Replacement string
	CrossGroup  bool
}

// SuppressedWindow records a window left unmodified because its rewrite plan
// was ambiguous.
type SuppressedWindow struct {
	Op      int // operation index of the window's first group
	Pattern string
	Text    string
	Reason  string
}

// Result is the structured outcome of one page rewrite, consumable by the
// caller's logging without the engine depending on any logging mechanism.
type Result struct {
	Modified        bool
	GroupsRewritten int
	Matches         []AppliedMatch
	Suppressed      []SuppressedWindow
}

// Option configures an Editor.
type Option func(*engineImpl)

// WithWindowSize sets how many consecutive groups the cross-group pass reads
// jointly. Values below 2 disable cross-group detection.
func WithWindowSize(n int) Option { return func(e *engineImpl) { e.window = n } }

// WithSpaceThreshold overrides the adjustment magnitude treated as an
// inter-word space.
func WithSpaceThreshold(t float64) Option { return func(e *engineImpl) { e.threshold = t } }

// WithLogger injects the logger rewrite passes report through.
func WithLogger(l observability.Logger) Option { return func(e *engineImpl) { e.log = l } }

// WithTracer injects the tracer page rewrites open spans on.
func WithTracer(t observability.Tracer) Option { return func(e *engineImpl) { e.tracer = t } }

// WithPattern appends a structural pattern to the cross-group detector
// table. User patterns run after the built-in split-decimal detector and are
// rebuilt with the generic redistribution rule.
func WithPattern(p StructuralPattern) Option {
	return func(e *engineImpl) { e.patterns = append(e.patterns, p) }
}

type engineImpl struct {
	vocab     *vocab.Vocabulary
	window    int
	threshold float64
	patterns  []StructuralPattern
	log       observability.Logger
	tracer    observability.Tracer
}

// NewEditor builds an Editor over the compiled vocabulary.
func NewEditor(v *vocab.Vocabulary, opts ...Option) Editor {
	e := &engineImpl{
		vocab:     v,
		window:    DefaultWindowSize,
		threshold: DefaultSpaceThreshold,
		patterns:  []StructuralPattern{newSplitDecimalPattern()},
		log:       observability.NopLogger{},
		tracer:    observability.NopTracer(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *engineImpl) RewritePage(ctx context.Context, ops []contentstream.Operation) ([]contentstream.Operation, *Result, error) {
	ctx, span := e.tracer.StartSpan(ctx, "editor.rewrite_page")
	defer span.Finish()

	res := &Result{}
	if e.vocab.Empty() || len(ops) == 0 {
		return ops, res, nil
	}
	if err := ctx.Err(); err != nil {
		span.SetError(err)
		return nil, nil, err
	}

	out := make([]contentstream.Operation, len(ops))
	copy(out, ops)
	groupModified := e.rewriteGroups(out, res)

	windowed, windowModified, err := e.rewriteWindows(ctx, out, res)
	if err != nil {
		span.SetError(err)
		return nil, nil, err
	}

	res.Modified = groupModified || windowModified
	span.SetTag("modified", res.Modified)
	e.log.Debug("page rewritten",
		observability.Bool("modified", res.Modified),
		observability.Int("groups_rewritten", res.GroupsRewritten),
		observability.Int("matches", len(res.Matches)),
		observability.Int("suppressed", len(res.Suppressed)))
	return windowed, res, nil
}

// rewriteGroups is the per-group phase: single-group segmentation over
// every TJ, and direct string rewriting over every Tj.
func (e *engineImpl) rewriteGroups(ops []contentstream.Operation, res *Result) bool {
	modified := false
	for i, op := range ops {
		if elems, ok := op.TextArray(); ok {
			newElems, matches := rewriteElements(elems, e.vocab, e.threshold)
			if newElems == nil {
				continue
			}
			ops[i] = contentstream.ShowTextPositioning(newElems)
			res.GroupsRewritten++
			for _, m := range matches {
				res.Matches = append(res.Matches, AppliedMatch{
					Op:          i,
					Original:    m.Original,
					Replacement: m.Replacement,
				})
			}
			modified = true
			continue
		}
		if text, ok := op.Text(); ok {
			rewritten, matches, changed := e.vocab.ReplaceAll(string(text))
			if !changed {
				continue
			}
			ops[i] = contentstream.ShowText([]byte(rewritten))
			res.GroupsRewritten++
			for _, m := range matches {
				res.Matches = append(res.Matches, AppliedMatch{
					Op:          i,
					Original:    m.Original,
					Replacement: m.Replacement,
				})
			}
			modified = true
		}
	}
	return modified
}

func (e *engineImpl) RewritePages(ctx context.Context, pages [][]contentstream.Operation) ([][]contentstream.Operation, []*Result, error) {
	outPages := make([][]contentstream.Operation, len(pages))
	results := make([]*Result, len(pages))
	errs := make([]error, len(pages))

	var wg sync.WaitGroup
	for i := range pages {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			outPages[i], results[i], errs[i] = e.RewritePage(ctx, pages[i])
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, nil, err
		}
	}
	return outPages, results, nil
}
