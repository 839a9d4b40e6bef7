// Package journal keeps a bounded record of proxied calls for diagnosis.
//
// Each entry captures what the relay did with one inbound request: the
// operation class, every candidate URL it tried, how many outbound calls
// were made, whether the binary field was stripped, which credential was
// used and how the call ended. Bodies and credentials are never stored.
//
// Two stores are available:
//
//   - MemoryStore is a fixed-size ring buffer. It is the default and loses
//     its contents on restart.
//   - SQLiteStore persists entries in a local SQLite database (pure Go
//     driver, WAL mode).
//
// Writes go through a Recorder, which queues entries on a buffered channel
// and drops them when the queue is full so that request handling never
// blocks on the journal. A Pruner deletes old entries on a cron schedule.
//
// The journal is disabled by default. When disabled, New returns a nil
// Recorder and callers skip journaling.
package journal
