// Package observability delivers task lifecycle events to observers and
// derives metrics and alerts from what they record. The Bus fans events out
// synchronously and contains every observer failure; the JSONL event log is
// the durable record the metrics calculator reads back.
package observability
