// Package timeouts defines shared timeout constants used across commands.
package timeouts

import "time"

// ScenarioStep caps a single scenario step.
const ScenarioStep = 10 * time.Second

// TelemetryShutdown limits how long span export may take on exit.
const TelemetryShutdown = 5 * time.Second
