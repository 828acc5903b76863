// Package memstore is an in-memory vectordb.Service used when
// STORE_BACKEND=memory and in tests. Data is lost on restart.
package memstore
