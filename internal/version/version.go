// Package version provides build and version information.
package version

// Version is the current application version.
const Version = "0.1.0"

// Milestones:
// 0.1.0 - Initial release: RINEX v2/v3 ingest, 12-channel L1 C/A synthesis,
//         user motion and NMEA trajectories, file/UDP sinks, live channel TUI
