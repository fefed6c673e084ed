package spotify

import (
	"context"

	"github.com/wippyai/libspot/errors"
	"github.com/wippyai/libspot/native"
	"github.com/wippyai/libspot/resource"
)

// SearchOptions selects the result windows of a search.
type SearchOptions struct {
	TrackOffset  int
	TrackCount   int
	AlbumOffset  int
	AlbumCount   int
	ArtistOffset int
	ArtistCount  int
}

// DefaultSearchOptions returns the first 25 results of each kind.
func DefaultSearchOptions() SearchOptions {
	return SearchOptions{TrackCount: 25, AlbumCount: 25, ArtistCount: 25}
}

// Search is an asynchronous search. Result lists are empty until it has
// loaded. Tracks, albums and artists it returns are shared wrappers owned by
// the session.
type Search struct {
	handle
	token uintptr
	done  *waiter
}

// startSearch reserves a completion token, runs create and wraps the result.
func (s *Session) startSearch(op, createOp string, create func(lib native.Library, sh native.Handle, token uintptr) native.Handle) (*Search, error) {
	token, w := s.binding.pending.add()
	var out *Search
	err := s.call(op, func(lib native.Library, sh native.Handle) error {
		h := create(lib, sh, token)
		if err := created(resource.KindSearch, createOp, h); err != nil {
			return err
		}
		var err error
		out, err = s.searches.Adopt(h, func(h native.Handle) (*Search, error) {
			sr := &Search{token: token, done: w}
			sr.init(resource.KindSearch, h, s, s.searches.Remove)
			return sr, nil
		}, lib.SearchRelease)
		return err
	})
	if err != nil {
		s.binding.pending.drop(token)
		return nil, err
	}
	return out, nil
}

// Search starts a catalog search. Nil opts selects DefaultSearchOptions.
func (s *Session) Search(query string, opts *SearchOptions) (*Search, error) {
	if query == "" {
		return nil, errors.InvalidInput(errors.PhaseResource, "search query is empty")
	}
	o := DefaultSearchOptions()
	if opts != nil {
		o = *opts
	}
	if o.TrackOffset < 0 || o.TrackCount < 0 || o.AlbumOffset < 0 || o.AlbumCount < 0 || o.ArtistOffset < 0 || o.ArtistCount < 0 {
		return nil, errors.InvalidInput(errors.PhaseResource, "search offsets and counts must not be negative")
	}
	params := native.SearchParams{
		Query:        query,
		TrackOffset:  o.TrackOffset,
		TrackCount:   o.TrackCount,
		AlbumOffset:  o.AlbumOffset,
		AlbumCount:   o.AlbumCount,
		ArtistOffset: o.ArtistOffset,
		ArtistCount:  o.ArtistCount,
	}
	return s.startSearch("search", "sp_search_create", func(lib native.Library, sh native.Handle, token uintptr) native.Handle {
		return lib.SearchCreate(sh, params, token)
	})
}

// RadioSearch finds tracks from albums released between fromYear and toYear
// in any of genres, most popular first.
func (s *Session) RadioSearch(fromYear, toYear int, genres native.RadioGenre) (*Search, error) {
	if fromYear > toYear {
		return nil, errors.InvalidInput(errors.PhaseResource, "radio search year range is reversed")
	}
	if genres == 0 {
		return nil, errors.InvalidInput(errors.PhaseResource, "radio search needs at least one genre")
	}
	return s.startSearch("radio_search", "sp_radio_search_create", func(lib native.Library, sh native.Handle, token uintptr) native.Handle {
		return lib.RadioSearchCreate(sh, fromYear, toYear, genres, token)
	})
}

// Wait drives the session until the search completes.
func (sr *Search) Wait(ctx context.Context) error {
	return waitLoaded(ctx, &sr.handle, sr.done, "search", func(lib native.Library, h native.Handle) (bool, native.Code) {
		return lib.SearchIsLoaded(h), lib.SearchError(h)
	})
}

// IsLoaded reports whether the results have arrived.
func (sr *Search) IsLoaded() (bool, error) {
	return get(&sr.handle, "is_loaded", func(lib native.Library, h native.Handle) bool {
		return lib.SearchIsLoaded(h)
	})
}

// Status returns the search's load status.
func (sr *Search) Status() (native.Code, error) {
	return get(&sr.handle, "error", func(lib native.Library, h native.Handle) native.Code {
		return lib.SearchError(h)
	})
}

// Query returns the query the search was created with.
func (sr *Search) Query() (string, error) {
	return get(&sr.handle, "query", func(lib native.Library, h native.Handle) string {
		return lib.SearchQuery(h)
	})
}

// DidYouMean returns the library's spelling suggestion, empty when it has
// none.
func (sr *Search) DidYouMean() (string, error) {
	return get(&sr.handle, "did_you_mean", func(lib native.Library, h native.Handle) string {
		return lib.SearchDidYouMean(h)
	})
}

// Tracks returns the tracks on this page of results.
func (sr *Search) Tracks() ([]*Track, error) {
	s, err := sr.owner("tracks")
	if err != nil {
		return nil, err
	}
	return getErr(&sr.handle, "tracks", func(lib native.Library, h native.Handle) ([]*Track, error) {
		return s.trackList(lib.SearchNumTracks(h), func(i int) native.Handle { return lib.SearchTrack(h, i) })
	})
}

// Albums returns the albums on this page of results.
func (sr *Search) Albums() ([]*Album, error) {
	s, err := sr.owner("albums")
	if err != nil {
		return nil, err
	}
	return getErr(&sr.handle, "albums", func(lib native.Library, h native.Handle) ([]*Album, error) {
		return s.albumList(lib.SearchNumAlbums(h), func(i int) native.Handle { return lib.SearchAlbum(h, i) })
	})
}

// Artists returns the artists on this page of results.
func (sr *Search) Artists() ([]*Artist, error) {
	s, err := sr.owner("artists")
	if err != nil {
		return nil, err
	}
	return getErr(&sr.handle, "artists", func(lib native.Library, h native.Handle) ([]*Artist, error) {
		return s.artistList(lib.SearchNumArtists(h), func(i int) native.Handle { return lib.SearchArtist(h, i) })
	})
}

// TotalTracks returns the number of matches, which may exceed the window.
func (sr *Search) TotalTracks() (int, error) {
	return get(&sr.handle, "total_tracks", func(lib native.Library, h native.Handle) int {
		return lib.SearchTotalTracks(h)
	})
}

// TotalAlbums returns the number of matching albums across all pages.
func (sr *Search) TotalAlbums() (int, error) {
	return get(&sr.handle, "total_albums", func(lib native.Library, h native.Handle) int {
		return lib.SearchTotalAlbums(h)
	})
}

// TotalArtists returns the number of matching artists across all pages.
func (sr *Search) TotalArtists() (int, error) {
	return get(&sr.handle, "total_artists", func(lib native.Library, h native.Handle) int {
		return lib.SearchTotalArtists(h)
	})
}

// Link creates a link that reruns the search.
func (sr *Search) Link() (*Link, error) {
	s, err := sr.owner("link")
	if err != nil {
		return nil, err
	}
	return getErr(&sr.handle, "link", func(lib native.Library, h native.Handle) (*Link, error) {
		return s.adoptLink(lib.LinkCreateFromSearch(h), "sp_link_create_from_search")
	})
}

// Dispose releases the search and fails a pending Wait. It is idempotent.
func (sr *Search) Dispose() error {
	pending := sr.binding.pending
	return sr.dispose(disposal{
		detach: func(native.Library, native.Handle) {
			pending.drop(sr.token)
		},
		release: sr.binding.lib.SearchRelease,
	})
}
