package spotify

import (
	"context"

	"github.com/wippyai/libspot/errors"
	"github.com/wippyai/libspot/native"
	"github.com/wippyai/libspot/resource"
)

// Toplist is an asynchronous toplist browse.
type Toplist struct {
	handle
	typ   native.ToplistType
	token uintptr
	done  *waiter
}

// Toplist browses the most popular items of typ in region.
func (s *Session) Toplist(typ native.ToplistType, region native.ToplistRegion) (*Toplist, error) {
	if region == native.ToplistRegionUser {
		return nil, errors.InvalidInput(errors.PhaseResource, "use UserToplist for a user's toplist")
	}
	return s.browseToplist(typ, region, "")
}

// UserToplist browses a user's toplist. An empty username selects the
// logged in user.
func (s *Session) UserToplist(typ native.ToplistType, username string) (*Toplist, error) {
	return s.browseToplist(typ, native.ToplistRegionUser, username)
}

func (s *Session) browseToplist(typ native.ToplistType, region native.ToplistRegion, username string) (*Toplist, error) {
	if typ < native.ToplistArtists || typ > native.ToplistTracks {
		return nil, errors.InvalidInput(errors.PhaseResource, "unknown toplist type")
	}
	token, w := s.binding.pending.add()
	var out *Toplist
	err := s.call("toplist", func(lib native.Library, sh native.Handle) error {
		h := lib.ToplistBrowseCreate(sh, typ, region, username, token)
		if err := created(resource.KindToplist, "sp_toplistbrowse_create", h); err != nil {
			return err
		}
		var err error
		out, err = s.toplists.Adopt(h, func(h native.Handle) (*Toplist, error) {
			tl := &Toplist{typ: typ, token: token, done: w}
			tl.init(resource.KindToplist, h, s, s.toplists.Remove)
			return tl, nil
		}, lib.ToplistBrowseRelease)
		return err
	})
	if err != nil {
		s.binding.pending.drop(token)
		return nil, err
	}
	return out, nil
}

// Type returns the kind of item the toplist holds.
func (tl *Toplist) Type() native.ToplistType {
	return tl.typ
}

// Wait drives the session until the browse completes.
func (tl *Toplist) Wait(ctx context.Context) error {
	return waitLoaded(ctx, &tl.handle, tl.done, "toplist", func(lib native.Library, h native.Handle) (bool, native.Code) {
		return lib.ToplistBrowseIsLoaded(h), lib.ToplistBrowseError(h)
	})
}

// IsLoaded reports whether the toplist has arrived.
func (tl *Toplist) IsLoaded() (bool, error) {
	return get(&tl.handle, "is_loaded", func(lib native.Library, h native.Handle) bool {
		return lib.ToplistBrowseIsLoaded(h)
	})
}

// Status returns the toplist's load status.
func (tl *Toplist) Status() (native.Code, error) {
	return get(&tl.handle, "error", func(lib native.Library, h native.Handle) native.Code {
		return lib.ToplistBrowseError(h)
	})
}

// Tracks returns the listed tracks, empty for other toplist types.
func (tl *Toplist) Tracks() ([]*Track, error) {
	s, err := tl.owner("tracks")
	if err != nil {
		return nil, err
	}
	return getErr(&tl.handle, "tracks", func(lib native.Library, h native.Handle) ([]*Track, error) {
		return s.trackList(lib.ToplistBrowseNumTracks(h), func(i int) native.Handle { return lib.ToplistBrowseTrack(h, i) })
	})
}

// Albums returns the listed albums, empty for other toplist types.
func (tl *Toplist) Albums() ([]*Album, error) {
	s, err := tl.owner("albums")
	if err != nil {
		return nil, err
	}
	return getErr(&tl.handle, "albums", func(lib native.Library, h native.Handle) ([]*Album, error) {
		return s.albumList(lib.ToplistBrowseNumAlbums(h), func(i int) native.Handle { return lib.ToplistBrowseAlbum(h, i) })
	})
}

// Artists returns the listed artists, empty for other toplist types.
func (tl *Toplist) Artists() ([]*Artist, error) {
	s, err := tl.owner("artists")
	if err != nil {
		return nil, err
	}
	return getErr(&tl.handle, "artists", func(lib native.Library, h native.Handle) ([]*Artist, error) {
		return s.artistList(lib.ToplistBrowseNumArtists(h), func(i int) native.Handle { return lib.ToplistBrowseArtist(h, i) })
	})
}

// Dispose releases the browse and fails a pending Wait. It is idempotent.
func (tl *Toplist) Dispose() error {
	pending := tl.binding.pending
	return tl.dispose(disposal{
		detach: func(native.Library, native.Handle) {
			pending.drop(tl.token)
		},
		release: tl.binding.lib.ToplistBrowseRelease,
	})
}
