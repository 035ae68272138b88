// Package repack writes modded copies of cached bundles.
//
// Mods are matched to bundle entries by file name. Each bundle that has at
// least one match is rewritten into the modded folder at the same relative
// path it has under the bundle cache, so the folder can be copied over the
// game's cache as-is.
package repack
