// Package check contains the building blocks of emailprobe: the MX
// resolver, the SOCKS5 connector and the mailbox probe state machine.
// These types can be used directly, but the recommended approach is
// to use the Validator from the github.com/optimode/emailprobe package.
package check
