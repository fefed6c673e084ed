package spotify

import (
	"github.com/wippyai/libspot/native"
	"github.com/wippyai/libspot/resource"
)

// User wraps a native user.
type User struct {
	handle
}

func (s *Session) user(h native.Handle) (*User, error) {
	lib := s.binding.lib
	return borrow(s.users, h, "sp_user_add_ref", lib.UserAddRef, func(h native.Handle) *User {
		u := &User{}
		u.init(resource.KindUser, h, s, s.users.Remove)
		return u
	})
}

// IsLoaded reports whether the user's profile has arrived.
func (u *User) IsLoaded() (bool, error) {
	return get(&u.handle, "is_loaded", func(lib native.Library, h native.Handle) bool {
		return lib.UserIsLoaded(h)
	})
}

// CanonicalName returns the login name.
func (u *User) CanonicalName() (string, error) {
	return get(&u.handle, "canonical_name", func(lib native.Library, h native.Handle) string {
		return lib.UserCanonicalName(h)
	})
}

// DisplayName returns the name shown to other users.
func (u *User) DisplayName() (string, error) {
	return get(&u.handle, "display_name", func(lib native.Library, h native.Handle) string {
		return lib.UserDisplayName(h)
	})
}

// FullName returns the real name, empty when the library does not provide it.
func (u *User) FullName() (string, error) {
	return get(&u.handle, "full_name", func(lib native.Library, h native.Handle) string {
		return lib.UserFullName(h)
	})
}

// Picture returns the URI of the user's picture, empty when unknown.
func (u *User) Picture() (string, error) {
	return get(&u.handle, "picture", func(lib native.Library, h native.Handle) string {
		return lib.UserPicture(h)
	})
}

// Dispose releases the user. It is idempotent.
func (u *User) Dispose() error {
	return u.dispose(disposal{release: u.binding.lib.UserRelease})
}
