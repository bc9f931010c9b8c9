// Package broadcast implements the event fan-out server.
//
// Producers publish events onto an unbounded in-memory queue and never block
// on slow subscribers. A single drain goroutine dequeues and sends each event
// to every authenticated websocket subscriber, best-effort: a failed send
// drops that one subscriber only. Subscribers authenticate by sending the
// shared secret as their first frame; there is no backlog replay.
package broadcast
