// Package lifecycle holds shared start and stop limits for fx hooks.
package lifecycle

import "time"

// DefaultTimeout bounds each OnStart and OnStop hook.
const DefaultTimeout = 15 * time.Second
