// Package engine drives command log replay on a headless simulated clock.
//
// The engine is the host side of replay: it owns the simulated clock, the
// pending queue and the command log, and calls cmdlog.Log.Update exactly
// once per tick. The CLI and the scenario harness both replay through it.
//
// ARCHITECTURE:
//
// Single-Writer Tick Loop:
// Every tick runs on one goroutine. The log, the queue and the receiver
// registry are only touched from it, which keeps replay order a pure
// function of the command list and the tick sequence.
//
// Tick Flow:
//  1. Pending controls are drained (cancel, camera suspension, pause)
//  2. The clock advances by dt unless paused
//  3. Log.Update applies at most the head command
//  4. Pause-state transitions are handled (auto-pause)
//  5. The applied command, if any, is appended to the trace
//
// Other goroutines never call into the log. They use Post to submit a
// Control, which the tick goroutine applies at the start of the next tick.
//
// Auto-pause:
// When the log reports the pause as due, the engine pauses its clock and
// moves the state to During, standing in for a host that pauses before the
// replay runs out. The pause is held for a fixed number of ticks, then the
// clock resumes and the state becomes Done.
package engine
