package spotify

import (
	"github.com/wippyai/libspot/native"
	"github.com/wippyai/libspot/resource"
)

// Album wraps a native album. Its artist and cover image are created on
// first access and disposed with it.
type Album struct {
	handle
	artist resource.Lazy[*Artist]
	cover  resource.Lazy[*Image]
}

func (s *Session) album(h native.Handle) (*Album, error) {
	lib := s.binding.lib
	return borrow(s.albums, h, "sp_album_add_ref", lib.AlbumAddRef, func(h native.Handle) *Album {
		a := &Album{}
		a.init(resource.KindAlbum, h, s, s.albums.Remove)
		return a
	})
}

// IsLoaded reports whether the album's metadata has arrived.
func (a *Album) IsLoaded() (bool, error) {
	return get(&a.handle, "is_loaded", func(lib native.Library, h native.Handle) bool {
		return lib.AlbumIsLoaded(h)
	})
}

// IsAvailable reports whether the album can be played in this region.
func (a *Album) IsAvailable() (bool, error) {
	return get(&a.handle, "is_available", func(lib native.Library, h native.Handle) bool {
		return lib.AlbumIsAvailable(h)
	})
}

// Name returns the album title, empty until loaded.
func (a *Album) Name() (string, error) {
	return get(&a.handle, "name", func(lib native.Library, h native.Handle) string {
		return lib.AlbumName(h)
	})
}

// Year returns the release year.
func (a *Album) Year() (int, error) {
	return get(&a.handle, "year", func(lib native.Library, h native.Handle) int {
		return lib.AlbumYear(h)
	})
}

// Type returns whether the album is an album, single or compilation.
func (a *Album) Type() (native.AlbumType, error) {
	return get(&a.handle, "type", func(lib native.Library, h native.Handle) native.AlbumType {
		return lib.AlbumType(h)
	})
}

// CoverID returns a copy of the cover image id, nil when the album has no
// cover.
func (a *Album) CoverID() ([]byte, error) {
	return get(&a.handle, "cover_id", func(lib native.Library, h native.Handle) []byte {
		if id := lib.AlbumCover(h); len(id) > 0 {
			return append([]byte(nil), id...)
		}
		return nil
	})
}

// Artist returns the album's main artist, nil until the album has loaded.
func (a *Album) Artist() (*Artist, error) {
	s, err := a.owner("artist")
	if err != nil {
		return nil, err
	}
	return getErr(&a.handle, "artist", func(lib native.Library, h native.Handle) (*Artist, error) {
		fresh(&a.artist)
		if ar, ok := a.artist.Peek(); ok {
			return ar, nil
		}
		ah := lib.AlbumArtist(h)
		if !ah.Valid() {
			return nil, nil
		}
		return a.artist.Get(func() (*Artist, error) { return s.artist(ah) })
	})
}

// Cover returns the album's cover image, nil when it has none. The image
// loads asynchronously; use Image.Wait before reading its data.
func (a *Album) Cover() (*Image, error) {
	s, err := a.owner("cover")
	if err != nil {
		return nil, err
	}
	return getErr(&a.handle, "cover", func(lib native.Library, h native.Handle) (*Image, error) {
		fresh(&a.cover)
		if img, ok := a.cover.Peek(); ok {
			return img, nil
		}
		id := lib.AlbumCover(h)
		if len(id) == 0 {
			return nil, nil
		}
		return a.cover.Get(func() (*Image, error) {
			return s.adoptImage(lib.ImageCreate(s.life.Handle(), id), "sp_image_create")
		})
	})
}

// Link creates a link to the album.
func (a *Album) Link() (*Link, error) {
	s, err := a.owner("link")
	if err != nil {
		return nil, err
	}
	return getErr(&a.handle, "link", func(lib native.Library, h native.Handle) (*Link, error) {
		return s.adoptLink(lib.LinkCreateFromAlbum(h), "sp_link_create_from_album")
	})
}

// CoverLink creates a link to the album's cover image.
func (a *Album) CoverLink() (*Link, error) {
	s, err := a.owner("cover_link")
	if err != nil {
		return nil, err
	}
	return getErr(&a.handle, "cover_link", func(lib native.Library, h native.Handle) (*Link, error) {
		return s.adoptLink(lib.LinkCreateFromAlbumCover(h), "sp_link_create_from_album_cover")
	})
}

// Dispose disposes the album's artist and cover, then releases the album.
// It is idempotent.
func (a *Album) Dispose() error {
	return a.dispose(disposal{
		children: func() []resource.Disposer {
			out := take(&a.artist, nil)
			return take(&a.cover, out)
		},
		release: a.binding.lib.AlbumRelease,
	})
}

func (s *Session) albumList(n int, at func(int) native.Handle) ([]*Album, error) {
	out := make([]*Album, 0, n)
	for i := range n {
		h := at(i)
		if !h.Valid() {
			continue
		}
		a, err := s.album(h)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}
