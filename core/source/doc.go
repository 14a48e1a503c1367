// Package source orders the content roots of a game install and merges keyed
// records across them.
//
// # Roots
//
// Resolve returns the base install first, then referenced mods, then the
// primary mod. Later roots win. Every mod root must carry a descriptor.mod
// with a name and version; a root without one is reported and skipped.
//
// # Merging
//
// Keyed categories (localisation, country tags, colours, continents) are
// folded with Merge in a fixed order: root by root, and inside a root the
// fallback language, the native language, then localisation/replace. The last
// write for a key wins. Whole-file resources such as map/definition.csv come
// from the highest priority root that has them (Latest).
package source
