package task

import "fmt"

// WaitTicks returns a Body that yields n times, then completes with nil.
func WaitTicks(n int) Body {
	return func(yield func()) (any, error) {
		for i := 0; i < n; i++ {
			yield()
		}
		return nil, nil
	}
}

// WaitUntil returns a Body that yields once per tick until predicate
// returns true, or fails once maxTicks yields have elapsed without the
// predicate becoming true.
func WaitUntil(predicate func() bool, maxTicks int) Body {
	return func(yield func()) (any, error) {
		ticks := 0
		for !predicate() {
			if maxTicks > 0 && ticks >= maxTicks {
				return nil, fmt.Errorf("wait_until: predicate not satisfied within %d ticks", maxTicks)
			}
			yield()
			ticks++
		}
		return nil, nil
	}
}

// Sequence returns a Body that runs each body in order, yielding
// between them as each body itself yields; fails fast on the first
// error, returning the slice of results gathered so far.
func Sequence(bodies ...Body) Body {
	return func(yield func()) (any, error) {
		results := make([]any, 0, len(bodies))
		for _, b := range bodies {
			res, err := runSub(b, yield)
			if err != nil {
				return results, err
			}
			results = append(results, res)
		}
		return results, nil
	}
}

// All advances every sub-body one step per outer yield, in stable
// order (spec §4.3: "race/all... sub-generators are advanced one step
// each per outer yield, in stable order"), completing once every
// sub-body has completed. The first sub-body error fails the whole
// All immediately; remaining sub-generators are abandoned.
func All(bodies ...Body) Body {
	return func(yield func()) (any, error) {
		subs := make([]*generator, len(bodies))
		for i, b := range bodies {
			subs[i] = newGenerator(b)
		}
		results := make([]any, len(bodies))
		finished := make([]bool, len(bodies))
		remaining := len(bodies)

		for remaining > 0 {
			for i, g := range subs {
				if finished[i] {
					continue
				}
				out := g.step()
				if out.yielded {
					continue
				}
				finished[i] = true
				remaining--
				if out.err != nil {
					for j, sg := range subs {
						if !finished[j] {
							sg.discard()
						}
					}
					return results, out.err
				}
				results[i] = out.result
			}
			if remaining > 0 {
				yield()
			}
		}
		return results, nil
	}
}

// Race advances every sub-body one step per outer yield, in stable
// order, and completes as soon as the first sub-body finishes
// (completed or failed); the rest are discarded.
func Race(bodies ...Body) Body {
	return func(yield func()) (any, error) {
		subs := make([]*generator, len(bodies))
		for i, b := range bodies {
			subs[i] = newGenerator(b)
		}

		for {
			for i, g := range subs {
				out := g.step()
				if !out.yielded {
					for j, sg := range subs {
						if j != i {
							sg.discard()
						}
					}
					return out.result, out.err
				}
			}
			yield()
		}
	}
}

// Retry runs body up to maxRetries+1 times, waiting delayTicks between
// attempts (via Yield), returning the first success or the last
// failure's error.
func Retry(body func() Body, maxRetries int, delayTicks int) Body {
	return func(yield func()) (any, error) {
		var lastErr error
		for attempt := 0; attempt <= maxRetries; attempt++ {
			res, err := runSub(body(), yield)
			if err == nil {
				return res, nil
			}
			lastErr = err
			if attempt < maxRetries {
				for i := 0; i < delayTicks; i++ {
					yield()
				}
			}
		}
		return nil, lastErr
	}
}

// Timeout runs body but fails with a timeout error if it has not
// completed within ticks yields.
func Timeout(body Body, ticks int) Body {
	return func(yield func()) (any, error) {
		g := newGenerator(body)
		for i := 0; i < ticks; i++ {
			out := g.step()
			if !out.yielded {
				return out.result, out.err
			}
			if i < ticks-1 {
				yield()
			}
		}
		g.discard()
		return nil, fmt.Errorf("timeout: body did not complete within %d ticks", ticks)
	}
}

// Repeat runs bodyFactory() to completion n times in sequence,
// collecting each result.
func Repeat(bodyFactory func() Body, n int) Body {
	return func(yield func()) (any, error) {
		results := make([]any, 0, n)
		for i := 0; i < n; i++ {
			res, err := runSub(bodyFactory(), yield)
			if err != nil {
				return results, err
			}
			results = append(results, res)
		}
		return results, nil
	}
}

// Whilst repeatedly runs bodyFactory() to completion while pred()
// returns true, checked before each iteration.
func Whilst(pred func() bool, bodyFactory func() Body) Body {
	return func(yield func()) (any, error) {
		var results []any
		for pred() {
			res, err := runSub(bodyFactory(), yield)
			if err != nil {
				return results, err
			}
			results = append(results, res)
		}
		return results, nil
	}
}

// Interval runs bodyFactory() to completion every everyTicks ticks, for
// iterations repetitions.
func Interval(bodyFactory func() Body, everyTicks int, iterations int) Body {
	return func(yield func()) (any, error) {
		var results []any
		for i := 0; i < iterations; i++ {
			res, err := runSub(bodyFactory(), yield)
			if err != nil {
				return results, err
			}
			results = append(results, res)
			if i < iterations-1 {
				for j := 0; j < everyTicks; j++ {
					yield()
				}
			}
		}
		return results, nil
	}
}

// Map runs bodyPerItem(item) to completion for each item in sequence,
// collecting results in input order.
func Map[T any](items []T, bodyPerItem func(T) Body) Body {
	return func(yield func()) (any, error) {
		results := make([]any, 0, len(items))
		for _, item := range items {
			res, err := runSub(bodyPerItem(item), yield)
			if err != nil {
				return results, err
			}
			results = append(results, res)
		}
		return results, nil
	}
}

// Filter runs predicateBody(item) to completion for each item in
// sequence, keeping items whose predicate body completed with a truthy
// (non-nil, non-false) result.
func Filter[T any](items []T, predicateBody func(T) Body) Body {
	return func(yield func()) (any, error) {
		var kept []T
		for _, item := range items {
			res, err := runSub(predicateBody(item), yield)
			if err != nil {
				return kept, err
			}
			if truthy(res) {
				kept = append(kept, item)
			}
		}
		return kept, nil
	}
}

func truthy(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case bool:
		return x
	default:
		return true
	}
}

// runSub drives a single sub-body to completion, relaying each of its
// yields as a yield of the outer body.
func runSub(body Body, yield func()) (any, error) {
	g := newGenerator(body)
	for {
		out := g.step()
		if !out.yielded {
			return out.result, out.err
		}
		yield()
	}
}
