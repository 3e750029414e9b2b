// Package tool manages the external packaging tool: mapping the host
// architecture to the tool's release tags, downloading and caching an
// executable tool build, and invoking it once against a staged tree.
//
// The tool's bundling algorithm is opaque; it is treated as a black-box
// executable whose non-zero exit aborts the build.
package tool
