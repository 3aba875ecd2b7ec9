package model

// The runtime keeps a process-level training mode: while it is on, models may
// collect training bookkeeping (parameter statistics, layer activations)
// during Evaluate. Inference must run with it off, and must restore whatever
// mode it found, so the mode is managed with a scoped guard rather than a
// bare global flag.
//
// The evaluation driver is single threaded; a concurrent driver would have to
// serialize these scopes around its model invocations.

var inferenceDepth int

// BeginInference enters inference-only mode and returns the release func.
// Pair them with defer so the prior mode comes back on every exit path,
// error paths included. Scopes nest.
func BeginInference() (release func()) {
	inferenceDepth++
	released := false
	return func() {
		if !released {
			released = true
			inferenceDepth--
		}
	}
}

// InInference reports whether any inference scope is open. Models consult
// this to skip training bookkeeping.
func InInference() bool {
	return inferenceDepth > 0
}
