//go:build !linux && !windows

package platform

// NewNativeBackend reports that no backend exists for this platform.
func NewNativeBackend() (Backend, func(), error) {
	return nil, nil, ErrUnsupported
}
