//go:build !develhelp

package ktable

// Without the develhelp tag the table keeps no usable stack statistics.
const stackInfoAvailable = false
