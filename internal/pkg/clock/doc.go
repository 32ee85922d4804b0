// Package clock is the time source for session timestamps and event times.
// Tests use Fixed to pin and advance the instant stamped on last_login.
package clock
