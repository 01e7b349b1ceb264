package transport

// Sink receives the three lifecycle notifications an Engine produces for
// one connection attempt. Implementations translate these into whatever
// event representation the host uses; the engine itself never sees
// the root Event type, which keeps this package free of a dependency on
// it.
type Sink interface {
	// Connected is called exactly once, before the receive loop starts
	// reading frames.
	Connected(tag string)
	// Data is called for each successfully framed and decoded message.
	// payload aliases the engine's read buffer and is only valid for the
	// duration of the call; implementations that retain it must copy it
	// first. The return value reports whether the callee's event queue
	// was at capacity and dropped the message, so the engine can log the
	// drop.
	Data(tag string, payload []byte) (overflowed bool)
	// Disconnected is called exactly once, when the connection is torn
	// down for any reason (peer close, protocol error, I/O error, or
	// local cancellation).
	Disconnected(tag string)
}
