// Package events maintains the append-only log of plugin operations.
//
// Every plugin operation appends one event after invoking its provider
// call. The log is best-effort observability: Append never returns an
// error to its caller and never participates in the transaction of the
// operation it describes. A failed append is reported through the
// structured logger and the operation proceeds. No update or delete
// surface exists.
//
// Operations that complete log StatusCompleted; operations whose
// provider call failed log StatusFailed with the same payload.
package events
