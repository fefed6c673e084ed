package spotify

import (
	"github.com/wippyai/libspot/native"
	"github.com/wippyai/libspot/resource"
)

// Artist wraps a native artist.
type Artist struct {
	handle
}

func (s *Session) artist(h native.Handle) (*Artist, error) {
	lib := s.binding.lib
	return borrow(s.artists, h, "sp_artist_add_ref", lib.ArtistAddRef, func(h native.Handle) *Artist {
		a := &Artist{}
		a.init(resource.KindArtist, h, s, s.artists.Remove)
		return a
	})
}

func (s *Session) artistList(n int, at func(int) native.Handle) ([]*Artist, error) {
	out := make([]*Artist, 0, n)
	for i := range n {
		h := at(i)
		if !h.Valid() {
			continue
		}
		a, err := s.artist(h)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}

// IsLoaded reports whether the artist's metadata has arrived.
func (a *Artist) IsLoaded() (bool, error) {
	return get(&a.handle, "is_loaded", func(lib native.Library, h native.Handle) bool {
		return lib.ArtistIsLoaded(h)
	})
}

// Name returns the artist name, empty until loaded.
func (a *Artist) Name() (string, error) {
	return get(&a.handle, "name", func(lib native.Library, h native.Handle) string {
		return lib.ArtistName(h)
	})
}

// Link creates a link to the artist.
func (a *Artist) Link() (*Link, error) {
	s, err := a.owner("link")
	if err != nil {
		return nil, err
	}
	return getErr(&a.handle, "link", func(lib native.Library, h native.Handle) (*Link, error) {
		return s.adoptLink(lib.LinkCreateFromArtist(h), "sp_link_create_from_artist")
	})
}

// Dispose releases the artist. It is idempotent.
func (a *Artist) Dispose() error {
	return a.dispose(disposal{release: a.binding.lib.ArtistRelease})
}
