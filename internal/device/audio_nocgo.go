//go:build !cgo

package device

// miniaudio needs cgo; without it there is no audio enumerator.
func platformAudioEnumerator() Enumerator {
	return nil
}
