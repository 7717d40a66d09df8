// Package cmdlog records the commands of a simulator session and replays a
// recorded session tick by tick.
//
// # Recording
//
// Every live action is passed to Log.Record, which stamps it with the
// current simulated time (continuous commands arrive pre-stamped with the
// time their gesture began) and appends it. Entries stay in recording order
// until Save, which stable-sorts them by time and writes the whole log in
// one atomic replace of the target file.
//
// # Replay
//
// A recorded file is decoded into a Queue sorted by time. The host calls
// Log.Update once per simulation tick with the simulated time and the
// queue. Update:
//
//  1. moves the pause state from Before to Due once the simulated time comes
//     within Config.PreEndMargin of the end of the replay, so the host can
//     pause before the recorded content runs out;
//  2. applies the head of the queue when its time has arrived, allowing
//     Config.PauseMargin of slack while the simulation is paused. A paused
//     command waits for its wall-clock duration instead; a camera command
//     waits while camera replay is suspended. Applied commands are appended
//     to the log, so a replay can be saved again;
//  3. once the queue is empty and Config.CompletionDelay of simulated time
//     has passed since the last applied command, fires the completion
//     notification exactly once.
//
// Update never blocks and never does I/O. A Log, its Queue and the receiver
// registry it resolves through belong to the single goroutine that drives
// the simulation tick.
//
// # Failures
//
// Save and Load log a warning and return an *Error with code IO_FAILURE or
// CORRUPT_LOG. Neither modifies the in-memory entries on failure, and a
// failed Save leaves the previous file on disk untouched. A command whose
// kind has no bound receiver is applied as a no-op.
package cmdlog
