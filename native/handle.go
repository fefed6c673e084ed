package native

import "fmt"

// Handle is an opaque native object address.
// Handle 0 is reserved and always invalid.
type Handle uintptr

// Invalid is the sentinel carried by disposed or unbound wrappers.
const Invalid Handle = 0

// Valid reports whether h can name a native object.
func (h Handle) Valid() bool {
	return h != Invalid
}

func (h Handle) String() string {
	if h == Invalid {
		return "invalid"
	}
	return fmt.Sprintf("%#x", uintptr(h))
}
