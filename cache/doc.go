// Package cache defines the caching contract shared by filearray strategies.
//
// Two implementations live in subpackages:
//   - block: caches whole fixed-size blocks and writes each patched block back
//   - fifo: caches single bytes up to a bound, evicting in insertion order
//
// Both strategies open the underlying file for every I/O call and hold no
// handle between calls. Writes made to the file by anything other than the
// owning strategy are not detected; call Reset to drop stale entries.
package cache
