// Package cache persists generated insight lists on disk with a TTL.
//
// Entries live as one JSON file per key under the configured directory
// (default ~/.esglens/cache). Keys are SHA-256 digests of the inputs that
// produced the value, so identical requests hit the same file.
package cache
