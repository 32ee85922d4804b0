// Package otp provides helpers for generating and validating one-time
// passwords (OTP), focused on TOTP (time-based OTP).
//
// The secret is kept separate from the provisioning URI so a stored secret
// can be re-provisioned on any device: GenerateSecret once, then KeyURI as
// many times as needed, and Validate user-provided codes against it.
package otp
