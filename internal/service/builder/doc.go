// Package builder orchestrates the packaging pipeline.
//
// A single run rebuilds the staging tree and ensures the packaging tool
// concurrently, normalizes staged text artifacts, invokes the tool once,
// marks the produced bundle executable, and records a build manifest.
// Every failure is terminal; the next run starts over from a clean tree.
package builder
