package scripting

import (
	"context"
	"fmt"
	"sync"

	"github.com/dop251/goja"
)

// GojaEngine runs detector scripts on a goja VM. The zero value is not
// usable; construct with NewEngine. An engine owns one VM; calls are
// serialized so the engine can be shared across page workers.
type GojaEngine struct {
	mu sync.Mutex
	vm *goja.Runtime
}

func NewEngine() *GojaEngine {
	return &GojaEngine{vm: goja.New()}
}

func (e *GojaEngine) Detect(ctx context.Context, script, text string) ([]Candidate, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if ctx == nil {
		ctx = context.Background()
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	done := make(chan struct{})
	watcherExited := make(chan struct{})
	go func() {
		defer close(watcherExited)
		select {
		case <-ctx.Done():
			e.vm.Interrupt(ctx.Err())
		case <-done:
		}
	}()
	// Join the watcher before clearing: an interrupt must never land on the
	// VM after ClearInterrupt, or the next call would inherit it.
	defer func() {
		close(done)
		<-watcherExited
		e.vm.ClearInterrupt()
	}()

	e.vm.Set("text", text)
	val, err := e.vm.RunString(script)
	if err != nil {
		if interruptedErr, ok := err.(*goja.InterruptedError); ok {
			if cause := interruptedErr.Unwrap(); cause != nil {
				return nil, cause
			}
			return nil, context.Canceled
		}
		return nil, err
	}
	return decodeCandidates(val.Export(), len(text))
}

func decodeCandidates(raw interface{}, limit int) ([]Candidate, error) {
	if raw == nil {
		return nil, nil
	}
	items, ok := raw.([]interface{})
	if !ok {
		return nil, fmt.Errorf("scripting: detector must return an array, got %T", raw)
	}
	out := make([]Candidate, 0, len(items))
	for _, item := range items {
		obj, ok := item.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("scripting: candidate must be an object, got %T", item)
		}
		c := Candidate{
			Start: asInt(obj["start"]),
			End:   asInt(obj["end"]),
		}
		if s, ok := obj["text"].(string); ok {
			c.Text = s
		}
		if c.Start < 0 || c.End > limit || c.Start >= c.End || c.Text == "" {
			return nil, fmt.Errorf("scripting: candidate span [%d,%d) invalid for text of length %d", c.Start, c.End, limit)
		}
		out = append(out, c)
	}
	return out, nil
}

func asInt(v interface{}) int {
	switch n := v.(type) {
	case int64:
		return int(n)
	case float64:
		return int(n)
	case int:
		return n
	}
	return -1
}
