//go:build !tinygo

package thread

import "runtime/debug"

func captureStack() []byte {
	return debug.Stack()
}
