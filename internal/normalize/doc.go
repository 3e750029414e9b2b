// Package normalize rewrites staged text artifacts to LF-only line endings.
//
// The scan is confined to the staging tree: only files the pipeline itself
// copied are ever rewritten, and the rewrite is byte-idempotent.
package normalize
