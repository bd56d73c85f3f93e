// Package certstore resolves the code-signing certificate subject the
// package manifest's Publisher attribute must byte-match.
//
// The platform certificate store is an external collaborator exposed
// through the Store interface with a single operation: list
// code-signing certificate identities. Selection of the certificate to
// use (valid now, furthest-future expiration) happens here in Go, so it
// can be tested against a fake store.
package certstore
