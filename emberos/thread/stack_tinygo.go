//go:build tinygo

package thread

func captureStack() []byte {
	return nil
}
