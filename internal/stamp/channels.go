// Package stamp implements polling-based cache invalidation. Every
// successful mutation publishes a wall-clock stamp to a named channel in the
// local store; each screen runs a poller that watches its channels and
// re-fetches the full collection when a stamp changes. There is no push
// mechanism: freshness is bounded by the poll interval.
package stamp

// Channels are the fixed set of change-notification keys. Writers only ever
// stamp "now", so last-write-wins needs no coordination.
const (
	ChannelTasks  = "tasksLastUpdated"
	ChannelHabits = "habitsLastUpdated"
	ChannelTheme  = "themeUpdateTimestamp"
)

// InitialStamp is the sentinel a poller assumes for a channel that has never
// been stamped.
const InitialStamp = "0"
