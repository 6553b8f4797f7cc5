package editor

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/shekharashishraj/codex-code-glyph/contentstream"
	"github.com/shekharashishraj/codex-code-glyph/observability"
	"github.com/shekharashishraj/codex-code-glyph/vocab"
)

// DefaultWindowSize is the number of consecutive TJ groups read jointly when
// looking for boundary-spanning patterns.
const DefaultWindowSize = 3

// windowState drives the per-page scan: SCANNING until a candidate is found,
// MATCH_FOUND once one resolves, APPLYING while its plan is executed (or
// suppressed), DONE when the operation list is exhausted.
type windowState int

const (
	stateScanning windowState = iota
	stateMatchFound
	stateApplying
	stateDone
)

// slot is one group inside a window: a read view over the current operation
// list plus the group's normalization.
type slot struct {
	op    int // operation index in the page list
	elems []contentstream.Operand
	norm  Normalized
	start int // offset of this slot's text inside the joint text
}

type window struct {
	slots []slot
	text  string
}

// windowCandidate is a resolved cross-boundary replacement waiting for a
// plan: either a structural pattern hit or a vocabulary phrase straddling a
// group boundary.
type windowCandidate struct {
	sm          StructuralMatch
	replacement string
	pattern     string // empty for plain vocabulary straddles
	decimal     bool
}

// rewriteWindows slides a window over consecutive TJ groups and resolves
// patterns that only make sense across group boundaries. Groups already
// rewritten by the per-group phase are its input, and each applied plan is
// visible to later windows.
func (e *engineImpl) rewriteWindows(ctx context.Context, ops []contentstream.Operation, res *Result) ([]contentstream.Operation, bool, error) {
	out := make([]contentstream.Operation, len(ops))
	copy(out, ops)

	var tj []int
	for i, op := range ops {
		if _, ok := op.TextArray(); ok {
			tj = append(tj, i)
		}
	}
	if len(tj) < 2 {
		return out, false, nil
	}

	modified := false
	state := stateScanning
	i := 0
	for state != stateDone {
		if err := ctx.Err(); err != nil {
			return nil, false, err
		}
		if i >= len(tj)-1 {
			state = stateDone
			continue
		}
		w := e.buildWindow(out, tj, i)
		cand, err := e.findCandidate(ctx, w)
		if err != nil {
			return nil, false, err
		}
		if cand == nil {
			i++
			continue
		}
		state = stateMatchFound
		e.log.Debug("cross-group candidate",
			observability.String("text", cand.sm.Text),
			observability.String("replacement", cand.replacement),
			observability.Int("op", w.slots[0].op))

		state = stateApplying
		advance, applied := e.applyCandidate(out, w, cand, res)
		if applied {
			modified = true
			i += advance
		} else {
			i++
		}
		state = stateScanning
	}
	return out, modified, nil
}

func (e *engineImpl) buildWindow(ops []contentstream.Operation, tj []int, i int) window {
	end := min(i+e.window, len(tj))
	w := window{}
	var parts []string
	offset := 0
	for _, opIdx := range tj[i:end] {
		elems, _ := ops[opIdx].TextArray()
		norm := Normalize(elems, e.threshold)
		if len(parts) > 0 {
			offset++ // the synthetic joining space
		}
		w.slots = append(w.slots, slot{op: opIdx, elems: elems, norm: norm, start: offset})
		parts = append(parts, norm.Text)
		offset += len(norm.Text)
	}
	w.text = strings.Join(parts, " ")
	return w
}

// findCandidate gathers structural and straddling vocabulary matches over
// the joint text and picks the winner: earliest start, then longest.
func (e *engineImpl) findCandidate(ctx context.Context, w window) (*windowCandidate, error) {
	var candidates []windowCandidate

	for _, p := range e.patterns {
		matches, err := p.Detect(ctx, w.text)
		if err != nil {
			return nil, fmt.Errorf("editor: pattern %s: %w", p.Name(), err)
		}
		_, decimal := p.(*splitDecimalPattern)
		for _, sm := range matches {
			repl, ok := e.vocab.Resolve(sm.Text)
			if !ok || repl == sm.Text {
				continue
			}
			candidates = append(candidates, windowCandidate{
				sm:          sm,
				replacement: repl,
				pattern:     p.Name(),
				decimal:     decimal,
			})
		}
	}

	for _, m := range e.vocab.Matches(w.text) {
		first, last, ok := w.slotRange(m.Start, m.End)
		if !ok || first == last {
			// Single-group phrases were already handled by the per-group
			// phase; only true straddles belong to this one.
			continue
		}
		candidates = append(candidates, windowCandidate{
			sm:          StructuralMatch{Start: m.Start, End: m.End, Text: m.Original},
			replacement: m.Replacement,
		})
	}

	if len(candidates) == 0 {
		return nil, nil
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].sm.Start != candidates[j].sm.Start {
			return candidates[i].sm.Start < candidates[j].sm.Start
		}
		return candidates[i].sm.End > candidates[j].sm.End
	})
	return &candidates[0], nil
}

// slotRange returns the first and last slot a joint-text span touches.
func (w window) slotRange(start, end int) (int, int, bool) {
	first, last := -1, -1
	for i, s := range w.slots {
		lo, hi := s.start, s.start+len(s.norm.Text)
		if start < hi && end > lo {
			if first == -1 {
				first = i
			}
			last = i
		}
	}
	if first == -1 {
		return 0, 0, false
	}
	return first, last, true
}

// localSpan clips a joint-text span to one slot's own coordinates.
func (s slot) localSpan(start, end int) (int, int) {
	lo := max(start-s.start, 0)
	hi := min(end-s.start, len(s.norm.Text))
	return lo, hi
}

// applyCandidate executes (or suppresses) a plan and reports how many window
// slots the scan should advance past.
func (e *engineImpl) applyCandidate(ops []contentstream.Operation, w window, cand *windowCandidate, res *Result) (int, bool) {
	first, last, ok := w.slotRange(cand.sm.Start, cand.sm.End)
	if !ok {
		return 0, false
	}
	if cand.decimal && last > first {
		if last-first >= 2 {
			e.suppress(res, w, cand, fmt.Sprintf("candidate spans %d groups", last-first+1))
			return 0, false
		}
		return e.applyDecimal(ops, w, cand, first, last, res)
	}
	return e.applyGeneric(ops, w, cand, first, last, res)
}

// applyDecimal executes the two-group decimal plan: the first group's
// trailing digit becomes the replacement's integer part and the second
// group's leading digits-and-colon become the separator plus the fraction.
func (e *engineImpl) applyDecimal(ops []contentstream.Operation, w window, cand *windowCandidate, first, last int, res *Result) (int, bool) {
	parts := strings.SplitN(cand.replacement, ".", 2)
	if len(parts) != 2 {
		// Replacement carries no separator to distribute; fall back to the
		// generic plan.
		return e.applyGeneric(ops, w, cand, first, last, res)
	}
	s0, s1 := w.slots[first], w.slots[last]
	lo0, hi0 := s0.localSpan(cand.sm.Start, cand.sm.End)
	lo1, hi1 := s1.localSpan(cand.sm.Start, cand.sm.End)

	digitPos := -1
	for i := hi0 - 1; i >= lo0; i-- {
		if s0.norm.Text[i] >= '0' && s0.norm.Text[i] <= '9' {
			digitPos = i
			break
		}
	}
	if digitPos == -1 {
		return e.applyGeneric(ops, w, cand, first, last, res)
	}

	insert := "." + parts[1]
	text0 := splice(s0.norm.Text, digitPos, digitPos+1, parts[0])
	text1 := splice(s1.norm.Text, lo1, hi1, insert)
	if strings.Contains(text0, "..") || strings.Contains(text1, "..") ||
		(strings.HasSuffix(text0, ".") && strings.HasPrefix(text1, ".")) {
		e.suppress(res, w, cand, "inserted separator adjacent to an existing one")
		return 0, false
	}

	changed := false
	if elems, _ := applyEdits(s0.elems, s0.norm, []vocab.Match{{Start: digitPos, End: digitPos + 1, Replacement: parts[0]}}); elems != nil {
		ops[s0.op] = contentstream.ShowTextPositioning(elems)
		res.GroupsRewritten++
		changed = true
	}
	if elems, _ := applyEdits(s1.elems, s1.norm, []vocab.Match{{Start: lo1, End: hi1, Replacement: insert}}); elems != nil {
		ops[s1.op] = contentstream.ShowTextPositioning(elems)
		res.GroupsRewritten++
		changed = true
	}
	if !changed {
		return 0, false
	}
	res.Matches = append(res.Matches, AppliedMatch{
		Op:          s0.op,
		Original:    cand.sm.Text,
		Replacement: cand.replacement,
		CrossGroup:  true,
	})
	return last + 1, true
}

// applyGeneric redistributes a straddling replacement with the same rule the
// per-group engine uses: the replacement lands in the group owning the match
// start and later groups lose the consumed characters.
func (e *engineImpl) applyGeneric(ops []contentstream.Operation, w window, cand *windowCandidate, first, last int, res *Result) (int, bool) {
	changed := false
	for i := first; i <= last; i++ {
		s := w.slots[i]
		lo, hi := s.localSpan(cand.sm.Start, cand.sm.End)
		if lo >= hi {
			continue
		}
		repl := ""
		if i == first {
			repl = cand.replacement
		}
		elems, _ := applyEdits(s.elems, s.norm, []vocab.Match{{Start: lo, End: hi, Replacement: repl}})
		if elems == nil {
			continue
		}
		ops[s.op] = contentstream.ShowTextPositioning(elems)
		res.GroupsRewritten++
		changed = true
	}
	if !changed {
		return 0, false
	}
	res.Matches = append(res.Matches, AppliedMatch{
		Op:          w.slots[first].op,
		Original:    cand.sm.Text,
		Replacement: cand.replacement,
		CrossGroup:  last > first,
	})
	return last + 1, true
}

func (e *engineImpl) suppress(res *Result, w window, cand *windowCandidate, reason string) {
	res.Suppressed = append(res.Suppressed, SuppressedWindow{
		Op:      w.slots[0].op,
		Pattern: cand.pattern,
		Text:    cand.sm.Text,
		Reason:  reason,
	})
	e.log.Warn("cross-group rewrite suppressed",
		observability.String("text", cand.sm.Text),
		observability.String("reason", reason),
		observability.Int("op", w.slots[0].op))
}

func splice(s string, start, end int, repl string) string {
	return s[:start] + repl + s[end:]
}
