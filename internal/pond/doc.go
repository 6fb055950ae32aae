// Package pond is a small duck pond application built on cell: a duck
// reducer, app-level middleware and a Prometheus metrics provider.
package pond
