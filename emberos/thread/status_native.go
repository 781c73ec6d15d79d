//go:build ember_native

package thread

import "ember/emberos/internal/kern/knative"

// Decode table for the native registry backend, whose raw codes start at 1
// because 0 is its not-found sentinel.
var statusTable = map[int32]Status{
	knative.StatusStopped:        StatusStopped,
	knative.StatusSleeping:       StatusSleeping,
	knative.StatusMutexBlocked:   StatusMutexBlocked,
	knative.StatusReceiveBlocked: StatusReceiveBlocked,
	knative.StatusSendBlocked:    StatusSendBlocked,
	knative.StatusReplyBlocked:   StatusReplyBlocked,
	knative.StatusFlagBlockedAny: StatusFlagBlockedAny,
	knative.StatusFlagBlockedAll: StatusFlagBlockedAll,
	knative.StatusMboxBlocked:    StatusMboxBlocked,
	knative.StatusRunning:        StatusRunning,
	knative.StatusPending:        StatusPending,
}
