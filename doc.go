// Package clawgantry controls a three-axis gantry claw machine.
//
// An operator steers the claw over the play field with a joystick against a
// countdown, then the machine drops the claw to a height measured by its
// range finder, grips, lifts, returns home and decides from a second
// measurement whether a prize was caught. Colored cards buy attempts. The
// same machine can run as a warehouse picker with its own screen texts.
//
// # Installation
//
//	go install github.com/gwillem/clawgantry/cmd/clawgantry@latest
//
// # Usage
//
// Find the controller board and write a configuration:
//
//	clawgantry setup
//
// Home the gantry and try a single grab:
//
//	clawgantry home --grab
//
// Run the machine, or a simulation of it:
//
//	clawgantry run
//	clawgantry run --sim
//
// # Packages
//
// The module is organized into the following packages:
//
//   - cmd/clawgantry: CLI with setup, run, home, monitor and history commands
//   - pkg/gantry: Motion, homing, gripping, ranging and the grab sequence
//   - pkg/teleop: Countdown and manual joystick control
//   - pkg/session: Credit-gated attempt state machine
//   - pkg/board: Serial protocol to the motor and sensor board
//   - pkg/servogrip: Feetech servo claw
//   - pkg/pins: Raspberry Pi GPIO switches
//   - pkg/journal: SQLite attempt log
//   - pkg/sim: Simulated machine for tests and --sim
package clawgantry
