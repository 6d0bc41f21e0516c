// Package types defines the Todo entity, the Store interface, the
// configuration record, and the standard error values for the Arbor
// storage engine. Every other package in the module speaks in terms of
// this package; nothing here depends on a concrete backend.
package types
