package spotify

import (
	"github.com/wippyai/libspot/native"
	"github.com/wippyai/libspot/resource"
)

// Playlist wraps a native playlist.
type Playlist struct {
	handle
}

// PlaylistContainer wraps the logged in user's list of playlists.
type PlaylistContainer struct {
	handle
}

func (s *Session) playlist(h native.Handle) (*Playlist, error) {
	lib := s.binding.lib
	return borrow(s.playlists, h, "sp_playlist_add_ref", lib.PlaylistAddRef, func(h native.Handle) *Playlist {
		p := &Playlist{}
		p.init(resource.KindPlaylist, h, s, s.playlists.Remove)
		return p
	})
}

func (s *Session) container(h native.Handle) (*PlaylistContainer, error) {
	lib := s.binding.lib
	return borrow(s.containers, h, "sp_playlistcontainer_add_ref", lib.PlaylistContainerAddRef, func(h native.Handle) *PlaylistContainer {
		c := &PlaylistContainer{}
		c.init(resource.KindPlaylistContainer, h, s, s.containers.Remove)
		return c
	})
}

// IsLoaded reports whether the playlist has been synchronized.
func (p *Playlist) IsLoaded() (bool, error) {
	return get(&p.handle, "is_loaded", func(lib native.Library, h native.Handle) bool {
		return lib.PlaylistIsLoaded(h)
	})
}

// Name returns the playlist name.
func (p *Playlist) Name() (string, error) {
	return get(&p.handle, "name", func(lib native.Library, h native.Handle) string {
		return lib.PlaylistName(h)
	})
}

// NumTracks returns the number of entries, including unavailable tracks.
func (p *Playlist) NumTracks() (int, error) {
	return get(&p.handle, "num_tracks", func(lib native.Library, h native.Handle) int {
		return lib.PlaylistNumTracks(h)
	})
}

// Tracks returns the playlist's tracks in order.
func (p *Playlist) Tracks() ([]*Track, error) {
	s, err := p.owner("tracks")
	if err != nil {
		return nil, err
	}
	return getErr(&p.handle, "tracks", func(lib native.Library, h native.Handle) ([]*Track, error) {
		return s.trackList(lib.PlaylistNumTracks(h), func(i int) native.Handle { return lib.PlaylistTrack(h, i) })
	})
}

// Owner returns the playlist's owner, nil when unknown.
func (p *Playlist) Owner() (*User, error) {
	s, err := p.owner("owner")
	if err != nil {
		return nil, err
	}
	return getErr(&p.handle, "owner", func(lib native.Library, h native.Handle) (*User, error) {
		uh := lib.PlaylistOwner(h)
		if !uh.Valid() {
			return nil, nil
		}
		return s.user(uh)
	})
}

// Dispose releases the playlist. It is idempotent.
func (p *Playlist) Dispose() error {
	return p.dispose(disposal{release: p.binding.lib.PlaylistRelease})
}

// NumPlaylists returns the number of entries in the container.
func (c *PlaylistContainer) NumPlaylists() (int, error) {
	return get(&c.handle, "num_playlists", func(lib native.Library, h native.Handle) int {
		return lib.PlaylistContainerNumPlaylists(h)
	})
}

// Playlists returns the container's playlists in order.
func (c *PlaylistContainer) Playlists() ([]*Playlist, error) {
	s, err := c.owner("playlists")
	if err != nil {
		return nil, err
	}
	return getErr(&c.handle, "playlists", func(lib native.Library, h native.Handle) ([]*Playlist, error) {
		n := lib.PlaylistContainerNumPlaylists(h)
		out := make([]*Playlist, 0, n)
		for i := range n {
			ph := lib.PlaylistContainerPlaylist(h, i)
			if !ph.Valid() {
				continue
			}
			p, err := s.playlist(ph)
			if err != nil {
				return nil, err
			}
			out = append(out, p)
		}
		return out, nil
	})
}

// Dispose releases the container. It is idempotent.
func (c *PlaylistContainer) Dispose() error {
	return c.dispose(disposal{release: c.binding.lib.PlaylistContainerRelease})
}
