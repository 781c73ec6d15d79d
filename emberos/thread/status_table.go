//go:build !ember_native

package thread

import "ember/emberos/internal/kern/ktable"

// Decode table for the thread-control-block backend. Each raw code is
// mapped explicitly; numeric layout coincidences between the two enums are
// never relied on. Swappable so fixture backends can bring their own codes.
var statusTable = map[int32]Status{
	ktable.StatusStopped:        StatusStopped,
	ktable.StatusSleeping:       StatusSleeping,
	ktable.StatusMutexBlocked:   StatusMutexBlocked,
	ktable.StatusReceiveBlocked: StatusReceiveBlocked,
	ktable.StatusSendBlocked:    StatusSendBlocked,
	ktable.StatusReplyBlocked:   StatusReplyBlocked,
	ktable.StatusFlagBlockedAny: StatusFlagBlockedAny,
	ktable.StatusFlagBlockedAll: StatusFlagBlockedAll,
	ktable.StatusMboxBlocked:    StatusMboxBlocked,
	ktable.StatusRunning:        StatusRunning,
	ktable.StatusPending:        StatusPending,
}
