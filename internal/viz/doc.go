// Package viz renders a running cloth in the terminal.
//
//   - [Canvas]: braille sub-pixel canvas the lattice is drawn on
//   - [Camera]: world to sub-pixel transform with spring-eased zoom and pan
//   - [Model]: Bubble Tea program that steps the simulator at a fixed rate
//   - [Recorder]: captures canvas frames into an animated GIF
//
// # Controls
//
//	Left drag   - Push the cloth
//	Right drag  - Cut springs under the cursor
//	R           - Reset to the rest pose
//	W           - Toggle wind
//	Space       - Pause/Resume
//	+/-, arrows - Zoom and pan
//	G           - Toggle GIF recording
//	[ ]         - Gravity down/up
//	( )         - Stiffness down/up
//	{ }         - Rest length down/up
//	?           - Full key help
package viz
