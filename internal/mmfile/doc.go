// Package mmfile maps heap files read-only for inspection commands that
// must not modify them.
package mmfile
