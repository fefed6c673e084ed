package sim

import (
	"encoding/hex"
	"slices"
	"strconv"
	"strings"

	"github.com/wippyai/libspot/native"
)

// get looks up h under l.mu and passes the live object to fn.
func get[T any](l *Library, h native.Handle, kind objKind, op string, fn func(o *object) T) T {
	l.mu.Lock()
	defer l.mu.Unlock()
	o := l.lookup(h, kind, op)
	if o == nil {
		var zero T
		return zero
	}
	return fn(o)
}

// Track

func (l *Library) TrackAddRef(track native.Handle) native.Code {
	defer l.enter()()
	return l.addRef(track, kindTrack, "sp_track_add_ref")
}

func (l *Library) TrackRelease(track native.Handle) native.Code {
	defer l.enter()()
	return l.release(track, kindTrack, "sp_track_release")
}

func (l *Library) TrackIsLoaded(track native.Handle) bool {
	defer l.enter()()
	return get(l, track, kindTrack, "sp_track_is_loaded", func(o *object) bool {
		return o.track.err == native.OK
	})
}

func (l *Library) TrackError(track native.Handle) native.Code {
	defer l.enter()()
	l.mu.Lock()
	defer l.mu.Unlock()
	o := l.lookup(track, kindTrack, "sp_track_error")
	if o == nil {
		return native.InvalidIndata
	}
	return o.track.err
}

func (l *Library) TrackName(track native.Handle) string {
	defer l.enter()()
	return get(l, track, kindTrack, "sp_track_name", func(o *object) string {
		if o.track.err != native.OK {
			return ""
		}
		return o.track.name
	})
}

func (l *Library) TrackDuration(track native.Handle) int {
	defer l.enter()()
	return get(l, track, kindTrack, "sp_track_duration", func(o *object) int { return o.track.durationMs })
}

func (l *Library) TrackPopularity(track native.Handle) int {
	defer l.enter()()
	return get(l, track, kindTrack, "sp_track_popularity", func(o *object) int { return o.track.popularity })
}

func (l *Library) TrackDisc(track native.Handle) int {
	defer l.enter()()
	return get(l, track, kindTrack, "sp_track_disc", func(o *object) int { return o.track.disc })
}

func (l *Library) TrackIndex(track native.Handle) int {
	defer l.enter()()
	return get(l, track, kindTrack, "sp_track_index", func(o *object) int { return o.track.index })
}

func (l *Library) TrackNumArtists(track native.Handle) int {
	defer l.enter()()
	return get(l, track, kindTrack, "sp_track_num_artists", func(o *object) int {
		if o.track.err != native.OK {
			return 0
		}
		return len(o.track.artists)
	})
}

func (l *Library) TrackArtist(track native.Handle, index int) native.Handle {
	defer l.enter()()
	return get(l, track, kindTrack, "sp_track_artist", func(o *object) native.Handle {
		if o.track.err != native.OK {
			return native.Invalid
		}
		return at(o.track.artists, index)
	})
}

func (l *Library) TrackAlbum(track native.Handle) native.Handle {
	defer l.enter()()
	return get(l, track, kindTrack, "sp_track_album", func(o *object) native.Handle {
		if o.track.err != native.OK {
			return native.Invalid
		}
		return o.track.album
	})
}

func (l *Library) TrackIsAvailable(session, track native.Handle) bool {
	defer l.enter()()
	l.mu.Lock()
	defer l.mu.Unlock()
	so := l.lookup(session, kindSession, "sp_track_is_available")
	to := l.lookup(track, kindTrack, "sp_track_is_available")
	return so != nil && to != nil && to.track.err == native.OK && to.track.available
}

func (l *Library) TrackIsStarred(session, track native.Handle) bool {
	defer l.enter()()
	l.mu.Lock()
	defer l.mu.Unlock()
	so := l.lookup(session, kindSession, "sp_track_is_starred")
	if so == nil || l.lookup(track, kindTrack, "sp_track_is_starred") == nil || !so.session.user.Valid() {
		return false
	}
	return l.objects[so.session.user].user.starred[track]
}

func (l *Library) TrackSetStarred(session native.Handle, tracks []native.Handle, star bool) native.Code {
	defer l.enter()()
	l.mu.Lock()
	defer l.mu.Unlock()
	so := l.lookup(session, kindSession, "sp_track_set_starred")
	if so == nil {
		return native.InvalidIndata
	}
	if !so.session.user.Valid() {
		return native.PermissionDenied
	}
	for _, t := range tracks {
		if l.lookup(t, kindTrack, "sp_track_set_starred") == nil {
			return native.InvalidIndata
		}
	}
	starred := l.objects[so.session.user].user.starred
	for _, t := range tracks {
		if star {
			starred[t] = true
		} else {
			delete(starred, t)
		}
	}
	return native.OK
}

// Album

func (l *Library) AlbumAddRef(album native.Handle) native.Code {
	defer l.enter()()
	return l.addRef(album, kindAlbum, "sp_album_add_ref")
}

func (l *Library) AlbumRelease(album native.Handle) native.Code {
	defer l.enter()()
	return l.release(album, kindAlbum, "sp_album_release")
}

func (l *Library) AlbumIsLoaded(album native.Handle) bool {
	defer l.enter()()
	return get(l, album, kindAlbum, "sp_album_is_loaded", func(*object) bool { return true })
}

func (l *Library) AlbumIsAvailable(album native.Handle) bool {
	defer l.enter()()
	return get(l, album, kindAlbum, "sp_album_is_available", func(o *object) bool { return o.album.available })
}

func (l *Library) AlbumArtist(album native.Handle) native.Handle {
	defer l.enter()()
	return get(l, album, kindAlbum, "sp_album_artist", func(o *object) native.Handle { return o.album.artist })
}

func (l *Library) AlbumCover(album native.Handle) []byte {
	defer l.enter()()
	return get(l, album, kindAlbum, "sp_album_cover", func(o *object) []byte { return o.album.cover })
}

func (l *Library) AlbumName(album native.Handle) string {
	defer l.enter()()
	return get(l, album, kindAlbum, "sp_album_name", func(o *object) string { return o.album.name })
}

func (l *Library) AlbumYear(album native.Handle) int {
	defer l.enter()()
	return get(l, album, kindAlbum, "sp_album_year", func(o *object) int { return o.album.year })
}

func (l *Library) AlbumType(album native.Handle) native.AlbumType {
	defer l.enter()()
	l.mu.Lock()
	defer l.mu.Unlock()
	o := l.lookup(album, kindAlbum, "sp_album_type")
	if o == nil {
		return native.AlbumTypeUnknown
	}
	return o.album.typ
}

// Artist

func (l *Library) ArtistAddRef(artist native.Handle) native.Code {
	defer l.enter()()
	return l.addRef(artist, kindArtist, "sp_artist_add_ref")
}

func (l *Library) ArtistRelease(artist native.Handle) native.Code {
	defer l.enter()()
	return l.release(artist, kindArtist, "sp_artist_release")
}

func (l *Library) ArtistIsLoaded(artist native.Handle) bool {
	defer l.enter()()
	return get(l, artist, kindArtist, "sp_artist_is_loaded", func(*object) bool { return true })
}

func (l *Library) ArtistName(artist native.Handle) string {
	defer l.enter()()
	return get(l, artist, kindArtist, "sp_artist_name", func(o *object) string { return o.artist.name })
}

// Image

func (l *Library) ImageCreate(session native.Handle, id []byte) native.Handle {
	defer l.enter()()
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.lookup(session, kindSession, "sp_image_create") == nil || len(id) != native.ImageIDSize {
		return native.Invalid
	}
	return l.image(id)
}

func (l *Library) ImageCreateFromLink(session, link native.Handle) native.Handle {
	defer l.enter()()
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.lookup(session, kindSession, "sp_image_create_from_link") == nil {
		return native.Invalid
	}
	lo := l.lookup(link, kindLink, "sp_image_create_from_link")
	if lo == nil || lo.link.typ != native.LinkImage {
		return native.Invalid
	}
	id, err := hex.DecodeString(strings.TrimPrefix(lo.link.uri, "spotify:image:"))
	if err != nil || len(id) != native.ImageIDSize {
		return native.Invalid
	}
	return l.image(id)
}

// image returns an owned reference to the image for id, sharing a live one.
// Callers hold l.mu.
func (l *Library) image(id []byte) native.Handle {
	if h, ok := l.images[string(id)]; ok {
		l.objects[h].refs++
		return h
	}

	img := &imageData{id: slices.Clone(id), err: native.IsLoading}
	h := l.alloc(&object{kind: kindImage, refs: 1, image: img})
	l.images[string(id)] = h

	l.post(func() {
		l.mu.Lock()
		o := l.objects[h]
		if o.freed {
			l.mu.Unlock()
			return
		}
		img.loaded = true
		img.err = native.OK
		img.data = append([]byte{0xff, 0xd8, 0xff, 0xe0}, img.id...)
		waiting := slices.Clone(img.callbacks)
		completions := l.completions
		l.mu.Unlock()

		if completions == nil || completions.ImageLoaded == nil {
			return
		}
		for _, userdata := range waiting {
			completions.ImageLoaded(h, userdata)
		}
	})
	return h
}

func (l *Library) ImageAddRef(image native.Handle) native.Code {
	defer l.enter()()
	return l.addRef(image, kindImage, "sp_image_add_ref")
}

func (l *Library) ImageRelease(image native.Handle) native.Code {
	defer l.enter()()
	return l.release(image, kindImage, "sp_image_release")
}

func (l *Library) ImageAddLoadCallback(image native.Handle, userdata uintptr) native.Code {
	defer l.enter()()
	l.mu.Lock()
	defer l.mu.Unlock()
	o := l.lookup(image, kindImage, "sp_image_add_load_callback")
	if o == nil {
		return native.InvalidIndata
	}
	o.image.callbacks = append(o.image.callbacks, userdata)
	return native.OK
}

func (l *Library) ImageRemoveLoadCallback(image native.Handle, userdata uintptr) native.Code {
	defer l.enter()()
	l.mu.Lock()
	defer l.mu.Unlock()
	o := l.lookup(image, kindImage, "sp_image_remove_load_callback")
	if o == nil {
		return native.InvalidIndata
	}
	o.image.callbacks = slices.DeleteFunc(o.image.callbacks, func(u uintptr) bool { return u == userdata })
	return native.OK
}

func (l *Library) ImageIsLoaded(image native.Handle) bool {
	defer l.enter()()
	return get(l, image, kindImage, "sp_image_is_loaded", func(o *object) bool { return o.image.loaded })
}

func (l *Library) ImageError(image native.Handle) native.Code {
	defer l.enter()()
	l.mu.Lock()
	defer l.mu.Unlock()
	o := l.lookup(image, kindImage, "sp_image_error")
	if o == nil {
		return native.InvalidIndata
	}
	return o.image.err
}

func (l *Library) ImageFormat(image native.Handle) native.ImageFormat {
	defer l.enter()()
	l.mu.Lock()
	defer l.mu.Unlock()
	o := l.lookup(image, kindImage, "sp_image_format")
	if o == nil || !o.image.loaded {
		return native.ImageFormatUnknown
	}
	return native.ImageFormatJPEG
}

func (l *Library) ImageData(image native.Handle) []byte {
	defer l.enter()()
	return get(l, image, kindImage, "sp_image_data", func(o *object) []byte { return o.image.data })
}

func (l *Library) ImageID(image native.Handle) []byte {
	defer l.enter()()
	return get(l, image, kindImage, "sp_image_image_id", func(o *object) []byte { return o.image.id })
}

// Link

func (l *Library) newLink(uri string, typ native.LinkType, target native.Handle, offsetMs int) native.Handle {
	return l.alloc(&object{kind: kindLink, refs: 1, link: &linkData{
		uri: uri, typ: typ, target: target, offsetMs: offsetMs,
	}})
}

func (l *Library) LinkCreateFromString(uri string) native.Handle {
	defer l.enter()()
	l.mu.Lock()
	defer l.mu.Unlock()

	parts := strings.SplitN(uri, ":", 3)
	if len(parts) != 3 || parts[0] != "spotify" || parts[2] == "" {
		return native.Invalid
	}
	kind, rest := parts[1], parts[2]
	switch kind {
	case "track":
		id, offset := rest, 0
		if i := strings.IndexByte(rest, '#'); i >= 0 {
			id = rest[:i]
			offset = parseOffset(rest[i+1:])
		}
		if h, ok := l.byID["track:"+id]; ok {
			return l.newLink(uri, native.LinkTrack, h, offset)
		}
	case "album":
		if h, ok := l.byID["album:"+rest]; ok {
			return l.newLink(uri, native.LinkAlbum, h, 0)
		}
	case "artist":
		if h, ok := l.byID["artist:"+rest]; ok {
			return l.newLink(uri, native.LinkArtist, h, 0)
		}
	case "search":
		return l.newLink(uri, native.LinkSearch, native.Invalid, 0)
	case "image":
		if id, err := hex.DecodeString(rest); err == nil && len(id) == native.ImageIDSize {
			return l.newLink(uri, native.LinkImage, native.Invalid, 0)
		}
	case "user":
		if name, _, _ := strings.Cut(rest, ":"); l.users[name].Valid() {
			typ := native.LinkProfile
			if strings.HasSuffix(rest, ":starred") {
				typ = native.LinkStarred
			}
			return l.newLink(uri, typ, native.Invalid, 0)
		}
	}
	return native.Invalid
}

// parseOffset reads a "mm:ss" track offset.
func parseOffset(s string) int {
	m, sec, ok := strings.Cut(s, ":")
	if !ok {
		return 0
	}
	mi, err1 := strconv.Atoi(m)
	si, err2 := strconv.Atoi(sec)
	if err1 != nil || err2 != nil {
		return 0
	}
	return (mi*60 + si) * 1000
}

func formatOffset(ms int) string {
	s := ms / 1000
	return strconv.Itoa(s/60) + ":" + leftPad(strconv.Itoa(s%60))
}

func leftPad(s string) string {
	if len(s) < 2 {
		return "0" + s
	}
	return s
}

func (l *Library) LinkCreateFromTrack(track native.Handle, offsetMs int) native.Handle {
	defer l.enter()()
	l.mu.Lock()
	defer l.mu.Unlock()
	o := l.lookup(track, kindTrack, "sp_link_create_from_track")
	if o == nil || o.track.err != native.OK {
		return native.Invalid
	}
	uri := "spotify:track:" + o.track.id
	if offsetMs > 0 {
		uri += "#" + formatOffset(offsetMs)
	}
	return l.newLink(uri, native.LinkTrack, track, offsetMs)
}

func (l *Library) LinkCreateFromAlbum(album native.Handle) native.Handle {
	defer l.enter()()
	l.mu.Lock()
	defer l.mu.Unlock()
	o := l.lookup(album, kindAlbum, "sp_link_create_from_album")
	if o == nil {
		return native.Invalid
	}
	return l.newLink("spotify:album:"+o.album.id, native.LinkAlbum, album, 0)
}

func (l *Library) LinkCreateFromAlbumCover(album native.Handle) native.Handle {
	defer l.enter()()
	l.mu.Lock()
	defer l.mu.Unlock()
	o := l.lookup(album, kindAlbum, "sp_link_create_from_album_cover")
	if o == nil || o.album.cover == nil {
		return native.Invalid
	}
	return l.newLink("spotify:image:"+hex.EncodeToString(o.album.cover), native.LinkImage, native.Invalid, 0)
}

func (l *Library) LinkCreateFromArtist(artist native.Handle) native.Handle {
	defer l.enter()()
	l.mu.Lock()
	defer l.mu.Unlock()
	o := l.lookup(artist, kindArtist, "sp_link_create_from_artist")
	if o == nil {
		return native.Invalid
	}
	return l.newLink("spotify:artist:"+o.artist.id, native.LinkArtist, artist, 0)
}

func (l *Library) LinkCreateFromSearch(search native.Handle) native.Handle {
	defer l.enter()()
	l.mu.Lock()
	defer l.mu.Unlock()
	o := l.lookup(search, kindSearch, "sp_link_create_from_search")
	if o == nil || !o.search.loaded {
		return native.Invalid
	}
	return l.newLink("spotify:search:"+strings.ReplaceAll(o.search.query, " ", "+"), native.LinkSearch, native.Invalid, 0)
}

func (l *Library) LinkAddRef(link native.Handle) native.Code {
	defer l.enter()()
	return l.addRef(link, kindLink, "sp_link_add_ref")
}

func (l *Library) LinkRelease(link native.Handle) native.Code {
	defer l.enter()()
	return l.release(link, kindLink, "sp_link_release")
}

func (l *Library) LinkAsString(link native.Handle) string {
	defer l.enter()()
	return get(l, link, kindLink, "sp_link_as_string", func(o *object) string { return o.link.uri })
}

func (l *Library) LinkType(link native.Handle) native.LinkType {
	defer l.enter()()
	return get(l, link, kindLink, "sp_link_type", func(o *object) native.LinkType { return o.link.typ })
}

func (l *Library) linkTarget(link native.Handle, typ native.LinkType, op string) native.Handle {
	return get(l, link, kindLink, op, func(o *object) native.Handle {
		if o.link.typ != typ {
			return native.Invalid
		}
		return o.link.target
	})
}

func (l *Library) LinkAsTrack(link native.Handle) native.Handle {
	defer l.enter()()
	return l.linkTarget(link, native.LinkTrack, "sp_link_as_track")
}

func (l *Library) LinkAsAlbum(link native.Handle) native.Handle {
	defer l.enter()()
	return l.linkTarget(link, native.LinkAlbum, "sp_link_as_album")
}

func (l *Library) LinkAsArtist(link native.Handle) native.Handle {
	defer l.enter()()
	return l.linkTarget(link, native.LinkArtist, "sp_link_as_artist")
}

// User

func (l *Library) UserAddRef(user native.Handle) native.Code {
	defer l.enter()()
	return l.addRef(user, kindUser, "sp_user_add_ref")
}

func (l *Library) UserRelease(user native.Handle) native.Code {
	defer l.enter()()
	return l.release(user, kindUser, "sp_user_release")
}

func (l *Library) UserIsLoaded(user native.Handle) bool {
	defer l.enter()()
	return get(l, user, kindUser, "sp_user_is_loaded", func(*object) bool { return true })
}

func (l *Library) UserCanonicalName(user native.Handle) string {
	defer l.enter()()
	return get(l, user, kindUser, "sp_user_canonical_name", func(o *object) string { return o.user.canonical })
}

func (l *Library) UserDisplayName(user native.Handle) string {
	defer l.enter()()
	return get(l, user, kindUser, "sp_user_display_name", func(o *object) string { return o.user.display })
}

func (l *Library) UserFullName(user native.Handle) string {
	defer l.enter()()
	return get(l, user, kindUser, "sp_user_full_name", func(o *object) string { return o.user.full })
}

func (l *Library) UserPicture(user native.Handle) string {
	defer l.enter()()
	return get(l, user, kindUser, "sp_user_picture", func(o *object) string { return o.user.picture })
}

// Playlist

func (l *Library) PlaylistAddRef(playlist native.Handle) native.Code {
	defer l.enter()()
	return l.addRef(playlist, kindPlaylist, "sp_playlist_add_ref")
}

func (l *Library) PlaylistRelease(playlist native.Handle) native.Code {
	defer l.enter()()
	return l.release(playlist, kindPlaylist, "sp_playlist_release")
}

func (l *Library) PlaylistIsLoaded(playlist native.Handle) bool {
	defer l.enter()()
	return get(l, playlist, kindPlaylist, "sp_playlist_is_loaded", func(*object) bool { return true })
}

func (l *Library) PlaylistName(playlist native.Handle) string {
	defer l.enter()()
	return get(l, playlist, kindPlaylist, "sp_playlist_name", func(o *object) string { return o.playlist.name })
}

func (l *Library) PlaylistNumTracks(playlist native.Handle) int {
	defer l.enter()()
	return get(l, playlist, kindPlaylist, "sp_playlist_num_tracks", func(o *object) int { return len(o.playlist.tracks) })
}

func (l *Library) PlaylistTrack(playlist native.Handle, index int) native.Handle {
	defer l.enter()()
	return get(l, playlist, kindPlaylist, "sp_playlist_track", func(o *object) native.Handle {
		return at(o.playlist.tracks, index)
	})
}

func (l *Library) PlaylistOwner(playlist native.Handle) native.Handle {
	defer l.enter()()
	return get(l, playlist, kindPlaylist, "sp_playlist_owner", func(o *object) native.Handle { return o.playlist.owner })
}

func (l *Library) PlaylistContainerAddRef(container native.Handle) native.Code {
	defer l.enter()()
	return l.addRef(container, kindContainer, "sp_playlistcontainer_add_ref")
}

func (l *Library) PlaylistContainerRelease(container native.Handle) native.Code {
	defer l.enter()()
	return l.release(container, kindContainer, "sp_playlistcontainer_release")
}

func (l *Library) PlaylistContainerNumPlaylists(container native.Handle) int {
	defer l.enter()()
	return get(l, container, kindContainer, "sp_playlistcontainer_num_playlists", func(o *object) int {
		return len(o.container.playlists)
	})
}

func (l *Library) PlaylistContainerPlaylist(container native.Handle, index int) native.Handle {
	defer l.enter()()
	return get(l, container, kindContainer, "sp_playlistcontainer_playlist", func(o *object) native.Handle {
		return at(o.container.playlists, index)
	})
}

func at(hs []native.Handle, i int) native.Handle {
	if i < 0 || i >= len(hs) {
		return native.Invalid
	}
	return hs[i]
}
