//go:build develhelp

package ktable

// Builds tagged develhelp carry stack introspection data.
const stackInfoAvailable = true
