//go:build !windows

package host

// enterApartment 仅 Windows 需要 COM 套间
func enterApartment() (func(), error) {
	return func() {}, nil
}
