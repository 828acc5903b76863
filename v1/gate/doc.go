// Package gate authorizes requests against a single shared secret sent in
// the X-API-Key header.
package gate
