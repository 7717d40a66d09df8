// Package harness runs scripted replays against the headless engine and
// checks what they do.
//
// # Command scripts
//
// A script lists commands with the simulated time they are recorded at and
// the payload fields of their kind:
//
//	name: morning-run
//	commands:
//	  - { at: 1, kind: horn, on: true }
//	  - { at: 3, kind: throttle, increase: true, target: 0.8 }
//	  - { at: 4, kind: injector, index: 2, on: false }
//	  - { at: 6, kind: paused, duration: 2 }
//	  - { at: 7, kind: camera-view, view: cab }
//	  - { at: 8, kind: save, stem: leg-2 }
//
// Record plays a script into a command log the way a live session would.
//
// # Scenarios
//
// A scenario adds a host clock and expectations to a script:
//
//	name: camera-held-back
//	description: "camera changes wait while the operator has the camera"
//	config: { pre_end_margin: 1 }
//	auto_pause: false
//	bind: [horn]
//	commands: [...]
//	ticks:
//	  dt: 0.5
//	  suspend_camera: [{ from: 1, to: 4 }]
//	assertions:
//	  - { type: applied_order, kinds: [camera-view, horn] }
//	  - { type: applied_count, kind: horn, count: 1 }
//	  - { type: not_applied, kind: save }
//	  - { type: pause_due_after, after: 1 }
//	  - { type: calls_contain, call: "horn set on" }
//	  - { type: completes }
//
// Kinds missing from bind have no receiver, so their commands are applied
// as no-ops. Omitting bind binds every kind.
//
// Scenarios are deterministic: the simulated clock, the wall clock and the
// receivers are fresh for every run, and the wall clock moves a fixed
// amount per tick. The snapshot of a run can therefore be compared with a
// golden file.
package harness
