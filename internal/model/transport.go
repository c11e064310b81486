package model

// Transport is an addressable handle to a connected client. Domain
// entities hold these as weak references: a send to a handle whose
// connection has closed is silently dropped, never an error.
type Transport interface {
	// Send queues an event for delivery to the peer. Delivery is
	// best-effort; the message is dropped if the peer is gone or its
	// buffer is full.
	Send(event EventType, data any)
}
