package player

// Events are optional notifications for the host. Callbacks fire on
// pipeline goroutines and must return quickly; nil callbacks are skipped.
type Events struct {
	// OnBufferFull fires once per episode of the producer finding no space.
	OnBufferFull func()
	// OnBufferEmpty fires once per episode of the consumer finding no frame.
	OnBufferEmpty func()
	// OnFinished fires exactly once per session that got past setup,
	// after the producer has exited and teardown is about to run.
	OnFinished func()
	// OnError fires on fatal setup errors only; per-packet decode errors
	// are logged and skipped.
	OnError func(error)
}

func (e *Events) bufferFull() {
	if e != nil && e.OnBufferFull != nil {
		e.OnBufferFull()
	}
}

func (e *Events) bufferEmpty() {
	if e != nil && e.OnBufferEmpty != nil {
		e.OnBufferEmpty()
	}
}

func (e *Events) finished() {
	if e != nil && e.OnFinished != nil {
		e.OnFinished()
	}
}

func (e *Events) error(err error) {
	if e != nil && e.OnError != nil {
		e.OnError(err)
	}
}
