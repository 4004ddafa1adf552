package transport

// Transport delivers analysis frames to a consumer. Implementations should
// be thread-safe.
//
// Send must not retain data after it returns; the frame loop reuses the
// value for the next tick.
type Transport interface {
	Send(data any) error
	Close() error
}
