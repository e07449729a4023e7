// Package widgets is a small inventory application that stores widgets in PostgreSQL and reacts to
// attribute changes with attribute callbacks. It is the runnable companion to the attrcallbacks
// and postgresengine packages; see cmd/widgets for the command line entry point.
package widgets
