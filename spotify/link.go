package spotify

import (
	"github.com/wippyai/libspot/errors"
	"github.com/wippyai/libspot/native"
	"github.com/wippyai/libspot/resource"
)

// Link wraps a native link. Objects reached through a link are shared
// wrappers owned by the session, not by the link.
type Link struct {
	handle
}

// adoptLink wraps an owned link from a create call. The gate must be held.
func (s *Session) adoptLink(h native.Handle, op string) (*Link, error) {
	if err := created(resource.KindLink, op, h); err != nil {
		return nil, err
	}
	return s.links.Adopt(h, func(h native.Handle) (*Link, error) {
		l := &Link{}
		l.init(resource.KindLink, h, s, s.links.Remove)
		return l, nil
	}, s.binding.lib.LinkRelease)
}

// ParseLink parses a spotify: URI. It fails with InvalidInput when the
// library does not recognize it.
func (s *Session) ParseLink(uri string) (*Link, error) {
	if uri == "" {
		return nil, errors.InvalidInput(errors.PhaseResource, "link uri is empty")
	}
	var l *Link
	err := s.call("parse_link", func(lib native.Library, _ native.Handle) error {
		h := lib.LinkCreateFromString(uri)
		if !h.Valid() {
			return errors.New(errors.PhaseResource, errors.KindInvalidInput).
				Resource(resource.KindLink.String()).
				Op("parse").
				Detail("unrecognized link %q", uri).
				Build()
		}
		var err error
		l, err = s.adoptLink(h, "sp_link_create_from_string")
		return err
	})
	return l, err
}

// URI returns the link's canonical string form.
func (l *Link) URI() (string, error) {
	return get(&l.handle, "as_string", func(lib native.Library, h native.Handle) string {
		return lib.LinkAsString(h)
	})
}

// Type returns the kind of object the link names.
func (l *Link) Type() (native.LinkType, error) {
	return get(&l.handle, "type", func(lib native.Library, h native.Handle) native.LinkType {
		return lib.LinkType(h)
	})
}

// Track returns the linked track, nil when the link is not a track link.
func (l *Link) Track() (*Track, error) {
	return follow(l, "as_track", native.Library.LinkAsTrack, (*Session).track)
}

// Album returns the linked album, nil when the link is not an album link.
func (l *Link) Album() (*Album, error) {
	return follow(l, "as_album", native.Library.LinkAsAlbum, (*Session).album)
}

// Artist returns the linked artist, nil when the link is not an artist link.
func (l *Link) Artist() (*Artist, error) {
	return follow(l, "as_artist", native.Library.LinkAsArtist, (*Session).artist)
}

func follow[T any](l *Link, op string, target func(native.Library, native.Handle) native.Handle, wrap func(*Session, native.Handle) (T, error)) (T, error) {
	var zero T
	s, err := l.owner(op)
	if err != nil {
		return zero, err
	}
	return getErr(&l.handle, op, func(lib native.Library, h native.Handle) (T, error) {
		th := target(lib, h)
		if !th.Valid() {
			return zero, nil
		}
		return wrap(s, th)
	})
}

// Dispose releases the link. It is idempotent.
func (l *Link) Dispose() error {
	return l.dispose(disposal{release: l.binding.lib.LinkRelease})
}
