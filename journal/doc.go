// Package journal exports the logs of retired navigation tasks.
//
// When a task leaves the agenda, either because the robot reached its target
// or because the agenda skipped it, its decision log and pose history are
// appended to a Journal as a single Entry. Two implementations are provided:
//
//   - RedisJournal appends JSON entries to a Redis list (RPUSH) so that runs
//     can be inspected by tooling outside the control process.
//   - MemoryJournal keeps entries in process and is used by tests and by the
//     corridor example.
//
// Export is best effort from the agenda's point of view: a failed Append is
// logged by the caller and never blocks task retirement.
package journal
