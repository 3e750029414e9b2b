// Package bundle contains core domain types for the packaging pipeline.
//
// It defines Descriptor, the identity of the application being bundled,
// together with the artifact names derived from it (desktop entry, icon,
// convenience script, and the final bundle filename).
package bundle
