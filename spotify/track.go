package spotify

import (
	"time"

	"github.com/wippyai/libspot/native"
	"github.com/wippyai/libspot/resource"
)

// Track wraps a native track. Its album and artists are created on first
// access and disposed with it.
type Track struct {
	handle
	album   resource.Lazy[*Album]
	artists resource.Lazy[[]*Artist]
}

func (s *Session) track(h native.Handle) (*Track, error) {
	lib := s.binding.lib
	return borrow(s.tracks, h, "sp_track_add_ref", lib.TrackAddRef, func(h native.Handle) *Track {
		t := &Track{}
		t.init(resource.KindTrack, h, s, s.tracks.Remove)
		return t
	})
}

func (s *Session) trackList(n int, at func(int) native.Handle) ([]*Track, error) {
	out := make([]*Track, 0, n)
	for i := range n {
		h := at(i)
		if !h.Valid() {
			continue
		}
		t, err := s.track(h)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

// IsLoaded reports whether the track's metadata has arrived.
func (t *Track) IsLoaded() (bool, error) {
	return get(&t.handle, "is_loaded", func(lib native.Library, h native.Handle) bool {
		return lib.TrackIsLoaded(h)
	})
}

// Status returns the track's load status. IsLoading means metadata is
// still pending.
func (t *Track) Status() (native.Code, error) {
	return get(&t.handle, "error", func(lib native.Library, h native.Handle) native.Code {
		return lib.TrackError(h)
	})
}

// Name returns the track title, empty until loaded.
func (t *Track) Name() (string, error) {
	return get(&t.handle, "name", func(lib native.Library, h native.Handle) string {
		return lib.TrackName(h)
	})
}

// Duration returns the track length.
func (t *Track) Duration() (time.Duration, error) {
	return get(&t.handle, "duration", func(lib native.Library, h native.Handle) time.Duration {
		return time.Duration(lib.TrackDuration(h)) * time.Millisecond
	})
}

// Popularity returns a value in [0, 100].
func (t *Track) Popularity() (int, error) {
	return get(&t.handle, "popularity", func(lib native.Library, h native.Handle) int {
		return lib.TrackPopularity(h)
	})
}

// Disc returns the disc number, starting at 1.
func (t *Track) Disc() (int, error) {
	return get(&t.handle, "disc", func(lib native.Library, h native.Handle) int {
		return lib.TrackDisc(h)
	})
}

// Index returns the position on the disc, starting at 1.
func (t *Track) Index() (int, error) {
	return get(&t.handle, "index", func(lib native.Library, h native.Handle) int {
		return lib.TrackIndex(h)
	})
}

// IsAvailable reports whether the track can be played in this session.
func (t *Track) IsAvailable() (bool, error) {
	return withSession(&t.handle, "is_available", func(lib native.Library, sh, h native.Handle) bool {
		return lib.TrackIsAvailable(sh, h)
	})
}

// IsStarred reports whether the logged in user starred the track.
func (t *Track) IsStarred() (bool, error) {
	return withSession(&t.handle, "is_starred", func(lib native.Library, sh, h native.Handle) bool {
		return lib.TrackIsStarred(sh, h)
	})
}

// SetStarred stars or unstars the track for the logged in user.
func (t *Track) SetStarred(star bool) error {
	code, err := withSession(&t.handle, "set_starred", func(lib native.Library, sh, h native.Handle) native.Code {
		return lib.TrackSetStarred(sh, []native.Handle{h}, star)
	})
	if err != nil {
		return err
	}
	return code.Err("sp_track_set_starred")
}

// Album returns the track's album. It is nil while the track has a non-OK
// status and is not cached until the track has loaded.
func (t *Track) Album() (*Album, error) {
	s, err := t.owner("album")
	if err != nil {
		return nil, err
	}
	return getErr(&t.handle, "album", func(lib native.Library, h native.Handle) (*Album, error) {
		fresh(&t.album)
		if a, ok := t.album.Peek(); ok {
			return a, nil
		}
		if lib.TrackError(h) != native.OK {
			return nil, nil
		}
		ah := lib.TrackAlbum(h)
		if !ah.Valid() {
			return nil, nil
		}
		return t.album.Get(func() (*Album, error) { return s.album(ah) })
	})
}

// Artists returns the track's artists in credit order.
func (t *Track) Artists() ([]*Artist, error) {
	s, err := t.owner("artists")
	if err != nil {
		return nil, err
	}
	return getErr(&t.handle, "artists", func(lib native.Library, h native.Handle) ([]*Artist, error) {
		freshAll(&t.artists)
		if as, ok := t.artists.Peek(); ok {
			return as, nil
		}
		if lib.TrackError(h) != native.OK {
			return nil, nil
		}
		return t.artists.Get(func() ([]*Artist, error) {
			n := lib.TrackNumArtists(h)
			out := make([]*Artist, 0, n)
			for i := range n {
				ah := lib.TrackArtist(h, i)
				if !ah.Valid() {
					continue
				}
				a, err := s.artist(ah)
				if err != nil {
					return nil, err
				}
				out = append(out, a)
			}
			return out, nil
		})
	})
}

// Link creates a link to the track starting at offset.
func (t *Track) Link(offset time.Duration) (*Link, error) {
	s, err := t.owner("link")
	if err != nil {
		return nil, err
	}
	return getErr(&t.handle, "link", func(lib native.Library, h native.Handle) (*Link, error) {
		return s.adoptLink(lib.LinkCreateFromTrack(h, int(offset.Milliseconds())), "sp_link_create_from_track")
	})
}

// Dispose disposes the track's album and artists, then releases the track.
// It is idempotent.
func (t *Track) Dispose() error {
	return t.dispose(disposal{
		children: func() []resource.Disposer {
			out := take(&t.album, nil)
			return takeAll(&t.artists, out)
		},
		release: t.binding.lib.TrackRelease,
	})
}
