// Package types defines the Entry record, the Store interface, configuration,
// and the standard errors shared by every triggerlog backend and surface.
package types
