// Package spine converts Spine 4.1 skeleton JSON into the binary .skel layout.
//
// ParseDocument reads the JSON (comments and trailing commas tolerated) into a
// typed Document with every default resolved, keeping object key order because
// the binary format writes animations, skins, and timelines in declaration
// order. Encode then writes the sections in their fixed order using a fresh
// NameTables built for that document.
//
// Only the skin named "default" is written, and the string table holds just
// the default skin's attachment names and paths. Events and non-essential data
// are never emitted.
package spine
