// Package st4 provides control of the eMotimo Spectrum ST4 motion controller
// over its USB serial port.
//
// The controller speaks a small ASCII G-code dialect: G0 rapid moves, G1
// coordinated timed moves, G2 jogs, G200/G201 to redefine motor positions
// and G700 to query the firmware version. Angles are given in degrees and
// converted to motor steps with the gearing of the pan (X) and tilt (Y)
// directions.
//
// # Installation
//
//	go install github.com/gwillem/st4/cmd/st4@latest
//
// # Usage
//
// First, find the controller and save its port:
//
//	st4 setup
//
// Then move it:
//
//	st4 rapid --pan 30 --tilt -5
//	st4 move --time 10 --accel 2 --pan -30
//	st4 control
//
// # Packages
//
// The module is organized into the following packages:
//
//   - cmd/st4: CLI with setup, motion and interactive control commands
//   - pkg/st4: Serial client, command encoding and unit conversion
//   - pkg/rig: Configuration, presets and axis names
//   - pkg/control: Interactive jog controller
package st4
