// Package messaging provides a broker-agnostic API for publishing events.
//
// Business code depends on Publisher only; the concrete broker (NATS, NSQ,
// Kafka, an in-process recorder, or nothing at all) is chosen at startup by
// NewFromDriver.
package messaging
