// Package stats holds the atomic counters spec §3's Statistics entity
// and §6's read-only statistics surface describe: message/byte counts,
// errors, drops, and the publisher- and demux-only counters, none of
// which take a lock on the data path.
package stats
