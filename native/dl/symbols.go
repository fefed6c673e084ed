//go:build darwin || linux

package dl

import (
	"fmt"
	"strings"

	"github.com/ebitengine/purego"
	"github.com/wippyai/libspot/errors"
)

// symbols holds the resolved libspotify entry points. sp_error, enum and int
// results are declared int32 to match the C ABI.
type symbols struct {
	errorMessage func(code int32) string

	sessionCreate               func(cfg *sessionConfig, out *uintptr) int32
	sessionRelease              func(s uintptr) int32
	sessionLogin                func(s uintptr, username, password string, remember bool, blob *byte) int32
	sessionLogout               func(s uintptr) int32
	sessionConnectionState      func(s uintptr) int32
	sessionProcessEvents        func(s uintptr, next *int32) int32
	sessionUser                 func(s uintptr) uintptr
	sessionUserCountry          func(s uintptr) int32
	sessionPlaylistContainer    func(s uintptr) uintptr
	sessionNumFriends           func(s uintptr) int32
	sessionFriend               func(s uintptr, index int32) uintptr
	sessionPreferredBitrate     func(s uintptr, b int32) int32
	sessionPreferredOfflineRate func(s uintptr, b int32, allowResync bool) int32
	sessionPlayerLoad           func(s, track uintptr) int32
	sessionPlayerPlay           func(s uintptr, play bool) int32
	sessionPlayerSeek           func(s uintptr, offset int32) int32
	sessionPlayerUnload         func(s uintptr) int32

	trackAddRef      func(t uintptr) int32
	trackRelease     func(t uintptr) int32
	trackIsLoaded    func(t uintptr) bool
	trackError       func(t uintptr) int32
	trackName        func(t uintptr) string
	trackDuration    func(t uintptr) int32
	trackPopularity  func(t uintptr) int32
	trackDisc        func(t uintptr) int32
	trackIndex       func(t uintptr) int32
	trackNumArtists  func(t uintptr) int32
	trackArtist      func(t uintptr, index int32) uintptr
	trackAlbum       func(t uintptr) uintptr
	trackIsAvailable func(s, t uintptr) int32
	trackIsStarred   func(s, t uintptr) bool
	trackSetStarred  func(s uintptr, tracks *uintptr, n int32, star bool) int32

	albumAddRef      func(a uintptr) int32
	albumRelease     func(a uintptr) int32
	albumIsLoaded    func(a uintptr) bool
	albumIsAvailable func(a uintptr) bool
	albumArtist      func(a uintptr) uintptr
	albumCover       func(a uintptr, size int32) uintptr
	albumName        func(a uintptr) string
	albumYear        func(a uintptr) int32
	albumType        func(a uintptr) int32

	artistAddRef   func(a uintptr) int32
	artistRelease  func(a uintptr) int32
	artistIsLoaded func(a uintptr) bool
	artistName     func(a uintptr) string

	imageCreate             func(s uintptr, id *byte) uintptr
	imageCreateFromLink     func(s, l uintptr) uintptr
	imageAddRef             func(i uintptr) int32
	imageRelease            func(i uintptr) int32
	imageAddLoadCallback    func(i, cb, userdata uintptr) int32
	imageRemoveLoadCallback func(i, cb, userdata uintptr) int32
	imageIsLoaded           func(i uintptr) bool
	imageError              func(i uintptr) int32
	imageFormat             func(i uintptr) int32
	imageData               func(i uintptr, size *uintptr) uintptr
	imageID                 func(i uintptr) uintptr

	linkCreateFromString     func(uri string) uintptr
	linkCreateFromTrack      func(t uintptr, offset int32) uintptr
	linkCreateFromAlbum      func(a uintptr) uintptr
	linkCreateFromAlbumCover func(a uintptr, size int32) uintptr
	linkCreateFromArtist     func(a uintptr) uintptr
	linkCreateFromSearch     func(s uintptr) uintptr
	linkAddRef               func(l uintptr) int32
	linkRelease              func(l uintptr) int32
	linkAsString             func(l uintptr, buf *byte, size int32) int32
	linkType                 func(l uintptr) int32
	linkAsTrack              func(l uintptr) uintptr
	linkAsAlbum              func(l uintptr) uintptr
	linkAsArtist             func(l uintptr) uintptr

	searchCreate       func(s uintptr, query string, trackOffset, trackCount, albumOffset, albumCount, artistOffset, artistCount, playlistOffset, playlistCount, typ int32, cb, userdata uintptr) uintptr
	searchAddRef       func(r uintptr) int32
	searchRelease      func(r uintptr) int32
	searchIsLoaded     func(r uintptr) bool
	searchError        func(r uintptr) int32
	searchQuery        func(r uintptr) string
	searchDidYouMean   func(r uintptr) string
	searchNumTracks    func(r uintptr) int32
	searchTrack        func(r uintptr, index int32) uintptr
	searchNumAlbums    func(r uintptr) int32
	searchAlbum        func(r uintptr, index int32) uintptr
	searchNumArtists   func(r uintptr) int32
	searchArtist       func(r uintptr, index int32) uintptr
	searchTotalTracks  func(r uintptr) int32
	searchTotalAlbums  func(r uintptr) int32
	searchTotalArtists func(r uintptr) int32

	// Only present in library builds older than API 10.
	radioSearchCreate func(s uintptr, fromYear, toYear, genres int32, cb, userdata uintptr) uintptr

	userAddRef        func(u uintptr) int32
	userRelease       func(u uintptr) int32
	userIsLoaded      func(u uintptr) bool
	userCanonicalName func(u uintptr) string
	userDisplayName   func(u uintptr) string

	// Removed in API 12; nil when the loaded build lacks them.
	userFullName func(u uintptr) string
	userPicture  func(u uintptr) string

	playlistAddRef    func(p uintptr) int32
	playlistRelease   func(p uintptr) int32
	playlistIsLoaded  func(p uintptr) bool
	playlistName      func(p uintptr) string
	playlistNumTracks func(p uintptr) int32
	playlistTrack     func(p uintptr, index int32) uintptr
	playlistOwner     func(p uintptr) uintptr

	containerAddRef       func(c uintptr) int32
	containerRelease      func(c uintptr) int32
	containerNumPlaylists func(c uintptr) int32
	containerPlaylist     func(c uintptr, index int32) uintptr

	toplistCreate     func(s uintptr, typ, region int32, username *byte, cb, userdata uintptr) uintptr
	toplistAddRef     func(b uintptr) int32
	toplistRelease    func(b uintptr) int32
	toplistIsLoaded   func(b uintptr) bool
	toplistError      func(b uintptr) int32
	toplistNumTracks  func(b uintptr) int32
	toplistTrack      func(b uintptr, index int32) uintptr
	toplistNumAlbums  func(b uintptr) int32
	toplistAlbum      func(b uintptr, index int32) uintptr
	toplistNumArtists func(b uintptr) int32
	toplistArtist     func(b uintptr, index int32) uintptr
}

type symbol struct {
	fptr     any
	name     string
	optional bool
}

func (s *symbols) table() []symbol {
	return []symbol{
		{&s.errorMessage, "sp_error_message", false},

		{&s.sessionCreate, "sp_session_create", false},
		{&s.sessionRelease, "sp_session_release", false},
		{&s.sessionLogin, "sp_session_login", false},
		{&s.sessionLogout, "sp_session_logout", false},
		{&s.sessionConnectionState, "sp_session_connectionstate", false},
		{&s.sessionProcessEvents, "sp_session_process_events", false},
		{&s.sessionUser, "sp_session_user", false},
		{&s.sessionUserCountry, "sp_session_user_country", false},
		{&s.sessionPlaylistContainer, "sp_session_playlistcontainer", false},
		{&s.sessionNumFriends, "sp_session_num_friends", true},
		{&s.sessionFriend, "sp_session_friend", true},
		{&s.sessionPreferredBitrate, "sp_session_preferred_bitrate", false},
		{&s.sessionPreferredOfflineRate, "sp_session_preferred_offline_bitrate", false},
		{&s.sessionPlayerLoad, "sp_session_player_load", false},
		{&s.sessionPlayerPlay, "sp_session_player_play", false},
		{&s.sessionPlayerSeek, "sp_session_player_seek", false},
		{&s.sessionPlayerUnload, "sp_session_player_unload", false},

		{&s.trackAddRef, "sp_track_add_ref", false},
		{&s.trackRelease, "sp_track_release", false},
		{&s.trackIsLoaded, "sp_track_is_loaded", false},
		{&s.trackError, "sp_track_error", false},
		{&s.trackName, "sp_track_name", false},
		{&s.trackDuration, "sp_track_duration", false},
		{&s.trackPopularity, "sp_track_popularity", false},
		{&s.trackDisc, "sp_track_disc", false},
		{&s.trackIndex, "sp_track_index", false},
		{&s.trackNumArtists, "sp_track_num_artists", false},
		{&s.trackArtist, "sp_track_artist", false},
		{&s.trackAlbum, "sp_track_album", false},
		{&s.trackIsAvailable, "sp_track_get_availability", false},
		{&s.trackIsStarred, "sp_track_is_starred", false},
		{&s.trackSetStarred, "sp_track_set_starred", false},

		{&s.albumAddRef, "sp_album_add_ref", false},
		{&s.albumRelease, "sp_album_release", false},
		{&s.albumIsLoaded, "sp_album_is_loaded", false},
		{&s.albumIsAvailable, "sp_album_is_available", false},
		{&s.albumArtist, "sp_album_artist", false},
		{&s.albumCover, "sp_album_cover", false},
		{&s.albumName, "sp_album_name", false},
		{&s.albumYear, "sp_album_year", false},
		{&s.albumType, "sp_album_type", false},

		{&s.artistAddRef, "sp_artist_add_ref", false},
		{&s.artistRelease, "sp_artist_release", false},
		{&s.artistIsLoaded, "sp_artist_is_loaded", false},
		{&s.artistName, "sp_artist_name", false},

		{&s.imageCreate, "sp_image_create", false},
		{&s.imageCreateFromLink, "sp_image_create_from_link", false},
		{&s.imageAddRef, "sp_image_add_ref", false},
		{&s.imageRelease, "sp_image_release", false},
		{&s.imageAddLoadCallback, "sp_image_add_load_callback", false},
		{&s.imageRemoveLoadCallback, "sp_image_remove_load_callback", false},
		{&s.imageIsLoaded, "sp_image_is_loaded", false},
		{&s.imageError, "sp_image_error", false},
		{&s.imageFormat, "sp_image_format", false},
		{&s.imageData, "sp_image_data", false},
		{&s.imageID, "sp_image_image_id", false},

		{&s.linkCreateFromString, "sp_link_create_from_string", false},
		{&s.linkCreateFromTrack, "sp_link_create_from_track", false},
		{&s.linkCreateFromAlbum, "sp_link_create_from_album", false},
		{&s.linkCreateFromAlbumCover, "sp_link_create_from_album_cover", false},
		{&s.linkCreateFromArtist, "sp_link_create_from_artist", false},
		{&s.linkCreateFromSearch, "sp_link_create_from_search", false},
		{&s.linkAddRef, "sp_link_add_ref", false},
		{&s.linkRelease, "sp_link_release", false},
		{&s.linkAsString, "sp_link_as_string", false},
		{&s.linkType, "sp_link_type", false},
		{&s.linkAsTrack, "sp_link_as_track", false},
		{&s.linkAsAlbum, "sp_link_as_album", false},
		{&s.linkAsArtist, "sp_link_as_artist", false},

		{&s.searchCreate, "sp_search_create", false},
		{&s.searchAddRef, "sp_search_add_ref", false},
		{&s.searchRelease, "sp_search_release", false},
		{&s.searchIsLoaded, "sp_search_is_loaded", false},
		{&s.searchError, "sp_search_error", false},
		{&s.searchQuery, "sp_search_query", false},
		{&s.searchDidYouMean, "sp_search_did_you_mean", false},
		{&s.searchNumTracks, "sp_search_num_tracks", false},
		{&s.searchTrack, "sp_search_track", false},
		{&s.searchNumAlbums, "sp_search_num_albums", false},
		{&s.searchAlbum, "sp_search_album", false},
		{&s.searchNumArtists, "sp_search_num_artists", false},
		{&s.searchArtist, "sp_search_artist", false},
		{&s.searchTotalTracks, "sp_search_total_tracks", false},
		{&s.searchTotalAlbums, "sp_search_total_albums", false},
		{&s.searchTotalArtists, "sp_search_total_artists", false},
		{&s.radioSearchCreate, "sp_radio_search_create", true},

		{&s.userAddRef, "sp_user_add_ref", false},
		{&s.userRelease, "sp_user_release", false},
		{&s.userIsLoaded, "sp_user_is_loaded", false},
		{&s.userCanonicalName, "sp_user_canonical_name", false},
		{&s.userDisplayName, "sp_user_display_name", false},
		{&s.userFullName, "sp_user_full_name", true},
		{&s.userPicture, "sp_user_picture", true},

		{&s.playlistAddRef, "sp_playlist_add_ref", false},
		{&s.playlistRelease, "sp_playlist_release", false},
		{&s.playlistIsLoaded, "sp_playlist_is_loaded", false},
		{&s.playlistName, "sp_playlist_name", false},
		{&s.playlistNumTracks, "sp_playlist_num_tracks", false},
		{&s.playlistTrack, "sp_playlist_track", false},
		{&s.playlistOwner, "sp_playlist_owner", false},

		{&s.containerAddRef, "sp_playlistcontainer_add_ref", false},
		{&s.containerRelease, "sp_playlistcontainer_release", false},
		{&s.containerNumPlaylists, "sp_playlistcontainer_num_playlists", false},
		{&s.containerPlaylist, "sp_playlistcontainer_playlist", false},

		{&s.toplistCreate, "sp_toplistbrowse_create", false},
		{&s.toplistAddRef, "sp_toplistbrowse_add_ref", false},
		{&s.toplistRelease, "sp_toplistbrowse_release", false},
		{&s.toplistIsLoaded, "sp_toplistbrowse_is_loaded", false},
		{&s.toplistError, "sp_toplistbrowse_error", false},
		{&s.toplistNumTracks, "sp_toplistbrowse_num_tracks", false},
		{&s.toplistTrack, "sp_toplistbrowse_track", false},
		{&s.toplistNumAlbums, "sp_toplistbrowse_num_albums", false},
		{&s.toplistAlbum, "sp_toplistbrowse_album", false},
		{&s.toplistNumArtists, "sp_toplistbrowse_num_artists", false},
		{&s.toplistArtist, "sp_toplistbrowse_artist", false},
	}
}

// resolve binds every entry point. Missing required symbols are collected so
// a version mismatch reports all of them at once.
func (s *symbols) resolve(lib uintptr) error {
	var missing []string
	for _, sym := range s.table() {
		addr, err := purego.Dlsym(lib, sym.name)
		if err != nil || addr == 0 {
			if !sym.optional {
				missing = append(missing, sym.name)
			}
			continue
		}
		purego.RegisterFunc(sym.fptr, addr)
	}
	if len(missing) > 0 {
		return errors.Load(fmt.Sprintf("missing symbols: %s", strings.Join(missing, ", ")), nil)
	}
	return nil
}
