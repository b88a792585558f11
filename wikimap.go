// Package wikimap maintains a verified, deduplicated map of content pages
// across the versions of the WICE documentation wiki. It discovers the
// published wiki versions from the software revision history, walks each
// version breadth-first, and records every usable page under the version
// it was first reached from.
//
// This package contains domain types, pure predicates and interfaces
// following Ben Johnson's Standard Package Layout. Implementations live in
// subdirectories named after their primary dependency (e.g., http/,
// goquery/, sqlite/).
package wikimap
