package task

import "fmt"

// Body is a cooperative generator body, the kernel's Go-native encoding
// of spec §4.3's "lazy sequence of yield points" (spec §9: "native
// coroutines where the target has them ... step function returning
// Yielded | Completed(value) | Failed(err)"). Go has no generator
// syntax, but it does have goroutines — the idiomatic substitute used
// here is the classic Go "generator" pattern (a dedicated goroutine
// strictly handed off to and from by channel, never running
// concurrently with its caller): the body receives a yield function;
// calling it suspends the body until the runner calls Step again.
//
// Exactly one of {the runner goroutine, the body goroutine} is ever
// runnable at a time — this is a single-threaded cooperative handoff,
// not concurrency, matching spec §5's "one task list... no data race
// can occur".
type Body func(yield func()) (result any, err error)

// outcome is what one generator step produces.
type outcome struct {
	yielded bool
	result  any
	err     error
}

// generator drives one Body instance across repeated Step calls.
type generator struct {
	resume chan struct{}
	yield  chan outcome
	cancel chan struct{}
	done   bool
}

func newGenerator(body Body) *generator {
	g := &generator{
		resume: make(chan struct{}),
		yield:  make(chan outcome),
		cancel: make(chan struct{}),
	}
	go g.run(body)
	return g
}

func (g *generator) run(body Body) {
	select {
	case <-g.resume: // wait for the first Step call
	case <-g.cancel:
		return
	}

	yieldFn := func() {
		g.yield <- outcome{yielded: true}
		select {
		case <-g.resume:
		case <-g.cancel:
			panic(cancelSignal{})
		}
	}

	result, err := runBody(body, yieldFn)
	select {
	case g.yield <- outcome{result: result, err: err}:
	case <-g.cancel:
	}
}

// cancelSignal unwinds a suspended body goroutine via panic/recover
// when the task is cancelled mid-yield; it never crosses into caller
// code.
type cancelSignal struct{}

func runBody(body Body, yieldFn func()) (result any, err error) {
	defer func() {
		if r := recover(); r != nil {
			if _, ok := r.(cancelSignal); ok {
				return
			}
			result, err = nil, fmt.Errorf("task body panicked: %v", r)
		}
	}()
	return body(yieldFn)
}

// step hands control to the body goroutine and blocks until it yields
// or terminates. Must not be called after a prior step reported
// !yielded (the goroutine has already exited), nor after discard.
func (g *generator) step() outcome {
	select {
	case g.resume <- struct{}{}:
	case <-g.cancel:
		return outcome{}
	}
	out := <-g.yield
	if !out.yielded {
		g.done = true
	}
	return out
}

// discard cancels the generator's goroutine (it unwinds via the
// cancelSignal panic/recover above the next time it would block on
// resume) instead of leaking it parked forever, matching spec §5's
// "the body's generator instance is discarded".
func (g *generator) discard() {
	if g.done {
		return
	}
	g.done = true
	close(g.cancel)
}
