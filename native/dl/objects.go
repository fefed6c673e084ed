//go:build darwin || linux

package dl

import (
	"github.com/wippyai/libspot/native"
)

func h(p uintptr) native.Handle { return native.Handle(p) }

func (l *Library) TrackAddRef(t native.Handle) native.Code {
	return native.Code(l.sym.trackAddRef(uintptr(t)))
}

func (l *Library) TrackRelease(t native.Handle) native.Code {
	return native.Code(l.sym.trackRelease(uintptr(t)))
}

func (l *Library) TrackIsLoaded(t native.Handle) bool { return l.sym.trackIsLoaded(uintptr(t)) }

func (l *Library) TrackError(t native.Handle) native.Code {
	return native.Code(l.sym.trackError(uintptr(t)))
}

func (l *Library) TrackName(t native.Handle) string { return l.sym.trackName(uintptr(t)) }
func (l *Library) TrackDuration(t native.Handle) int {
	return int(l.sym.trackDuration(uintptr(t)))
}
func (l *Library) TrackPopularity(t native.Handle) int {
	return int(l.sym.trackPopularity(uintptr(t)))
}
func (l *Library) TrackDisc(t native.Handle) int  { return int(l.sym.trackDisc(uintptr(t))) }
func (l *Library) TrackIndex(t native.Handle) int { return int(l.sym.trackIndex(uintptr(t))) }
func (l *Library) TrackNumArtists(t native.Handle) int {
	return int(l.sym.trackNumArtists(uintptr(t)))
}

func (l *Library) TrackArtist(t native.Handle, index int) native.Handle {
	return h(l.sym.trackArtist(uintptr(t), int32(index)))
}

func (l *Library) TrackAlbum(t native.Handle) native.Handle {
	return h(l.sym.trackAlbum(uintptr(t)))
}

func (l *Library) TrackIsAvailable(s, t native.Handle) bool {
	return l.sym.trackIsAvailable(uintptr(s), uintptr(t)) == trackAvailable
}

func (l *Library) TrackIsStarred(s, t native.Handle) bool {
	return l.sym.trackIsStarred(uintptr(s), uintptr(t))
}

func (l *Library) TrackSetStarred(s native.Handle, tracks []native.Handle, star bool) native.Code {
	if len(tracks) == 0 {
		return native.OK
	}
	ptrs := make([]uintptr, len(tracks))
	for i, t := range tracks {
		ptrs[i] = uintptr(t)
	}
	return native.Code(l.sym.trackSetStarred(uintptr(s), &ptrs[0], int32(len(ptrs)), star))
}

func (l *Library) AlbumAddRef(a native.Handle) native.Code {
	return native.Code(l.sym.albumAddRef(uintptr(a)))
}

func (l *Library) AlbumRelease(a native.Handle) native.Code {
	return native.Code(l.sym.albumRelease(uintptr(a)))
}

func (l *Library) AlbumIsLoaded(a native.Handle) bool    { return l.sym.albumIsLoaded(uintptr(a)) }
func (l *Library) AlbumIsAvailable(a native.Handle) bool { return l.sym.albumIsAvailable(uintptr(a)) }

func (l *Library) AlbumArtist(a native.Handle) native.Handle {
	return h(l.sym.albumArtist(uintptr(a)))
}

func (l *Library) AlbumCover(a native.Handle) []byte {
	return goBytes(l.sym.albumCover(uintptr(a), imageSizeNormal), native.ImageIDSize)
}

func (l *Library) AlbumName(a native.Handle) string { return l.sym.albumName(uintptr(a)) }
func (l *Library) AlbumYear(a native.Handle) int    { return int(l.sym.albumYear(uintptr(a))) }

func (l *Library) AlbumType(a native.Handle) native.AlbumType {
	return native.AlbumType(l.sym.albumType(uintptr(a)))
}

func (l *Library) ArtistAddRef(a native.Handle) native.Code {
	return native.Code(l.sym.artistAddRef(uintptr(a)))
}

func (l *Library) ArtistRelease(a native.Handle) native.Code {
	return native.Code(l.sym.artistRelease(uintptr(a)))
}

func (l *Library) ArtistIsLoaded(a native.Handle) bool { return l.sym.artistIsLoaded(uintptr(a)) }
func (l *Library) ArtistName(a native.Handle) string   { return l.sym.artistName(uintptr(a)) }

func (l *Library) ImageCreate(s native.Handle, id []byte) native.Handle {
	if len(id) != native.ImageIDSize {
		return native.Invalid
	}
	return h(l.sym.imageCreate(uintptr(s), &id[0]))
}

func (l *Library) ImageCreateFromLink(s, link native.Handle) native.Handle {
	return h(l.sym.imageCreateFromLink(uintptr(s), uintptr(link)))
}

func (l *Library) ImageAddRef(i native.Handle) native.Code {
	return native.Code(l.sym.imageAddRef(uintptr(i)))
}

func (l *Library) ImageRelease(i native.Handle) native.Code {
	return native.Code(l.sym.imageRelease(uintptr(i)))
}

func (l *Library) ImageAddLoadCallback(i native.Handle, userdata uintptr) native.Code {
	return native.Code(l.sym.imageAddLoadCallback(uintptr(i), imageLoadedThunk, userdata))
}

func (l *Library) ImageRemoveLoadCallback(i native.Handle, userdata uintptr) native.Code {
	return native.Code(l.sym.imageRemoveLoadCallback(uintptr(i), imageLoadedThunk, userdata))
}

func (l *Library) ImageIsLoaded(i native.Handle) bool { return l.sym.imageIsLoaded(uintptr(i)) }

func (l *Library) ImageError(i native.Handle) native.Code {
	return native.Code(l.sym.imageError(uintptr(i)))
}

func (l *Library) ImageFormat(i native.Handle) native.ImageFormat {
	return native.ImageFormat(l.sym.imageFormat(uintptr(i)))
}

func (l *Library) ImageData(i native.Handle) []byte {
	var n uintptr
	p := l.sym.imageData(uintptr(i), &n)
	return view(p, int(n))
}

func (l *Library) ImageID(i native.Handle) []byte {
	return goBytes(l.sym.imageID(uintptr(i)), native.ImageIDSize)
}

func (l *Library) LinkCreateFromString(uri string) native.Handle {
	if uri == "" {
		return native.Invalid
	}
	return h(l.sym.linkCreateFromString(uri))
}

func (l *Library) LinkCreateFromTrack(t native.Handle, offsetMs int) native.Handle {
	return h(l.sym.linkCreateFromTrack(uintptr(t), int32(offsetMs)))
}

func (l *Library) LinkCreateFromAlbum(a native.Handle) native.Handle {
	return h(l.sym.linkCreateFromAlbum(uintptr(a)))
}

func (l *Library) LinkCreateFromAlbumCover(a native.Handle) native.Handle {
	return h(l.sym.linkCreateFromAlbumCover(uintptr(a), imageSizeNormal))
}

func (l *Library) LinkCreateFromArtist(a native.Handle) native.Handle {
	return h(l.sym.linkCreateFromArtist(uintptr(a)))
}

func (l *Library) LinkCreateFromSearch(s native.Handle) native.Handle {
	return h(l.sym.linkCreateFromSearch(uintptr(s)))
}

func (l *Library) LinkAddRef(link native.Handle) native.Code {
	return native.Code(l.sym.linkAddRef(uintptr(link)))
}

func (l *Library) LinkRelease(link native.Handle) native.Code {
	return native.Code(l.sym.linkRelease(uintptr(link)))
}

// LinkAsString grows the buffer until the returned length fits.
func (l *Library) LinkAsString(link native.Handle) string {
	buf := make([]byte, linkBufferInitial)
	for {
		n := int(l.sym.linkAsString(uintptr(link), &buf[0], int32(len(buf))))
		if n < 0 {
			return ""
		}
		if n < len(buf) {
			return string(buf[:n])
		}
		buf = make([]byte, n+1)
	}
}

func (l *Library) LinkType(link native.Handle) native.LinkType {
	return native.LinkType(l.sym.linkType(uintptr(link)))
}

func (l *Library) LinkAsTrack(link native.Handle) native.Handle {
	return h(l.sym.linkAsTrack(uintptr(link)))
}

func (l *Library) LinkAsAlbum(link native.Handle) native.Handle {
	return h(l.sym.linkAsAlbum(uintptr(link)))
}

func (l *Library) LinkAsArtist(link native.Handle) native.Handle {
	return h(l.sym.linkAsArtist(uintptr(link)))
}

func (l *Library) SearchCreate(s native.Handle, p native.SearchParams, userdata uintptr) native.Handle {
	return h(l.sym.searchCreate(uintptr(s), p.Query,
		int32(p.TrackOffset), int32(p.TrackCount),
		int32(p.AlbumOffset), int32(p.AlbumCount),
		int32(p.ArtistOffset), int32(p.ArtistCount),
		0, 0, searchStandard, searchCompleteThunk, userdata))
}

// RadioSearchCreate returns Invalid when the loaded build has no radio search.
func (l *Library) RadioSearchCreate(s native.Handle, fromYear, toYear int, genres native.RadioGenre, userdata uintptr) native.Handle {
	if l.sym.radioSearchCreate == nil {
		return native.Invalid
	}
	return h(l.sym.radioSearchCreate(uintptr(s), int32(fromYear), int32(toYear), int32(genres), searchCompleteThunk, userdata))
}

func (l *Library) SearchAddRef(r native.Handle) native.Code {
	return native.Code(l.sym.searchAddRef(uintptr(r)))
}

func (l *Library) SearchRelease(r native.Handle) native.Code {
	return native.Code(l.sym.searchRelease(uintptr(r)))
}

func (l *Library) SearchIsLoaded(r native.Handle) bool { return l.sym.searchIsLoaded(uintptr(r)) }

func (l *Library) SearchError(r native.Handle) native.Code {
	return native.Code(l.sym.searchError(uintptr(r)))
}

func (l *Library) SearchQuery(r native.Handle) string      { return l.sym.searchQuery(uintptr(r)) }
func (l *Library) SearchDidYouMean(r native.Handle) string { return l.sym.searchDidYouMean(uintptr(r)) }

func (l *Library) SearchNumTracks(r native.Handle) int {
	return int(l.sym.searchNumTracks(uintptr(r)))
}

func (l *Library) SearchTrack(r native.Handle, index int) native.Handle {
	return h(l.sym.searchTrack(uintptr(r), int32(index)))
}

func (l *Library) SearchNumAlbums(r native.Handle) int {
	return int(l.sym.searchNumAlbums(uintptr(r)))
}

func (l *Library) SearchAlbum(r native.Handle, index int) native.Handle {
	return h(l.sym.searchAlbum(uintptr(r), int32(index)))
}

func (l *Library) SearchNumArtists(r native.Handle) int {
	return int(l.sym.searchNumArtists(uintptr(r)))
}

func (l *Library) SearchArtist(r native.Handle, index int) native.Handle {
	return h(l.sym.searchArtist(uintptr(r), int32(index)))
}

func (l *Library) SearchTotalTracks(r native.Handle) int {
	return int(l.sym.searchTotalTracks(uintptr(r)))
}

func (l *Library) SearchTotalAlbums(r native.Handle) int {
	return int(l.sym.searchTotalAlbums(uintptr(r)))
}

func (l *Library) SearchTotalArtists(r native.Handle) int {
	return int(l.sym.searchTotalArtists(uintptr(r)))
}

func (l *Library) UserAddRef(u native.Handle) native.Code {
	return native.Code(l.sym.userAddRef(uintptr(u)))
}

func (l *Library) UserRelease(u native.Handle) native.Code {
	return native.Code(l.sym.userRelease(uintptr(u)))
}

func (l *Library) UserIsLoaded(u native.Handle) bool { return l.sym.userIsLoaded(uintptr(u)) }

func (l *Library) UserCanonicalName(u native.Handle) string {
	return l.sym.userCanonicalName(uintptr(u))
}

func (l *Library) UserDisplayName(u native.Handle) string {
	return l.sym.userDisplayName(uintptr(u))
}

func (l *Library) UserFullName(u native.Handle) string {
	if l.sym.userFullName == nil {
		return ""
	}
	return l.sym.userFullName(uintptr(u))
}

func (l *Library) UserPicture(u native.Handle) string {
	if l.sym.userPicture == nil {
		return ""
	}
	return l.sym.userPicture(uintptr(u))
}

func (l *Library) PlaylistAddRef(p native.Handle) native.Code {
	return native.Code(l.sym.playlistAddRef(uintptr(p)))
}

func (l *Library) PlaylistRelease(p native.Handle) native.Code {
	return native.Code(l.sym.playlistRelease(uintptr(p)))
}

func (l *Library) PlaylistIsLoaded(p native.Handle) bool { return l.sym.playlistIsLoaded(uintptr(p)) }
func (l *Library) PlaylistName(p native.Handle) string   { return l.sym.playlistName(uintptr(p)) }

func (l *Library) PlaylistNumTracks(p native.Handle) int {
	return int(l.sym.playlistNumTracks(uintptr(p)))
}

func (l *Library) PlaylistTrack(p native.Handle, index int) native.Handle {
	return h(l.sym.playlistTrack(uintptr(p), int32(index)))
}

func (l *Library) PlaylistOwner(p native.Handle) native.Handle {
	return h(l.sym.playlistOwner(uintptr(p)))
}

func (l *Library) PlaylistContainerAddRef(c native.Handle) native.Code {
	return native.Code(l.sym.containerAddRef(uintptr(c)))
}

func (l *Library) PlaylistContainerRelease(c native.Handle) native.Code {
	return native.Code(l.sym.containerRelease(uintptr(c)))
}

func (l *Library) PlaylistContainerNumPlaylists(c native.Handle) int {
	return int(l.sym.containerNumPlaylists(uintptr(c)))
}

func (l *Library) PlaylistContainerPlaylist(c native.Handle, index int) native.Handle {
	return h(l.sym.containerPlaylist(uintptr(c), int32(index)))
}

func (l *Library) ToplistBrowseCreate(s native.Handle, typ native.ToplistType, region native.ToplistRegion, username string, userdata uintptr) native.Handle {
	return h(l.sym.toplistCreate(uintptr(s), int32(typ), int32(region), cString(username), toplistCompleteThunk, userdata))
}

func (l *Library) ToplistBrowseAddRef(b native.Handle) native.Code {
	return native.Code(l.sym.toplistAddRef(uintptr(b)))
}

func (l *Library) ToplistBrowseRelease(b native.Handle) native.Code {
	return native.Code(l.sym.toplistRelease(uintptr(b)))
}

func (l *Library) ToplistBrowseIsLoaded(b native.Handle) bool {
	return l.sym.toplistIsLoaded(uintptr(b))
}

func (l *Library) ToplistBrowseError(b native.Handle) native.Code {
	return native.Code(l.sym.toplistError(uintptr(b)))
}

func (l *Library) ToplistBrowseNumTracks(b native.Handle) int {
	return int(l.sym.toplistNumTracks(uintptr(b)))
}

func (l *Library) ToplistBrowseTrack(b native.Handle, index int) native.Handle {
	return h(l.sym.toplistTrack(uintptr(b), int32(index)))
}

func (l *Library) ToplistBrowseNumAlbums(b native.Handle) int {
	return int(l.sym.toplistNumAlbums(uintptr(b)))
}

func (l *Library) ToplistBrowseAlbum(b native.Handle, index int) native.Handle {
	return h(l.sym.toplistAlbum(uintptr(b), int32(index)))
}

func (l *Library) ToplistBrowseNumArtists(b native.Handle) int {
	return int(l.sym.toplistNumArtists(uintptr(b)))
}

func (l *Library) ToplistBrowseArtist(b native.Handle, index int) native.Handle {
	return h(l.sym.toplistArtist(uintptr(b), int32(index)))
}
