// Package model provides a schema-driven record with dirty tracking that satisfies
// attrcallbacks.Record and can be persisted by postgresengine.
//
// Collection values (text arrays and text maps) are snapshotted with deep copies whenever the
// model is loaded or saved, so in-place mutations such as writing into a map returned by
// StringMap are detected as changes without any explicit "will change" call.
package model
