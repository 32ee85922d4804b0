// Package hash provides helpers for verifying stored user passwords.
//
// Stored credentials are compared against user input through the Hash
// interface. The driver is chosen by configuration: "plain" reads seed files
// that hold cleartext passwords and compares in constant time, while
// "bcrypt", "argon2id" and "hmac" expect the stored value to be a digest
// produced by the matching implementation.
package hash
