// Package security provides log redaction for bot credentials and
// flood control for outgoing messages.
package security
