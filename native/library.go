package native

// Library is the fixed native function table.
//
// Ownership: methods whose name contains Create return an owned reference that
// the caller releases exactly once. Every other method returning a Handle
// returns a borrowed reference; AddRef it to keep it past the owner's life.
// A failed create returns Invalid.
//
// None of the methods are safe for concurrent use. Callers serialize them
// through a Gate.
type Library interface {
	// ErrorMessage returns the library's text for a status code.
	ErrorMessage(c Code) string

	// RegisterCompletions installs the process-wide completion table.
	// Passing nil uninstalls it.
	RegisterCompletions(c *Completions)

	SessionAPI
	PlayerAPI
	TrackAPI
	AlbumAPI
	ArtistAPI
	ImageAPI
	LinkAPI
	SearchAPI
	UserAPI
	PlaylistAPI
	ToplistAPI
}

type SessionAPI interface {
	// SessionCreate returns an owned session. cfg.Callbacks must stay alive
	// until SessionRelease returns.
	SessionCreate(cfg *SessionConfig) (Handle, Code)
	SessionRelease(session Handle) Code
	SessionLogin(session Handle, username, password string) Code
	SessionLogout(session Handle) Code
	SessionConnectionState(session Handle) ConnectionState
	// SessionProcessEvents returns the milliseconds until it wants to run again.
	SessionProcessEvents(session Handle) int
	// SessionUser returns a borrowed user, Invalid when logged out.
	SessionUser(session Handle) Handle
	SessionUserCountry(session Handle) int
	// SessionPlaylistContainer returns a borrowed container.
	SessionPlaylistContainer(session Handle) Handle
	// SessionNumFriends returns 0 when the library has no friend list.
	SessionNumFriends(session Handle) int
	// SessionFriend returns a borrowed user.
	SessionFriend(session Handle, index int) Handle
	SessionPreferredBitrate(session Handle, b Bitrate) Code
	SessionPreferredOfflineBitrate(session Handle, b Bitrate, allowResync bool) Code
}

type PlayerAPI interface {
	PlayerLoad(session, track Handle) Code
	PlayerPlay(session Handle, play bool) Code
	PlayerSeek(session Handle, offsetMs int) Code
	PlayerUnload(session Handle) Code
}

type TrackAPI interface {
	TrackAddRef(track Handle) Code
	TrackRelease(track Handle) Code
	TrackIsLoaded(track Handle) bool
	TrackError(track Handle) Code
	TrackName(track Handle) string
	TrackDuration(track Handle) int
	TrackPopularity(track Handle) int
	TrackDisc(track Handle) int
	TrackIndex(track Handle) int
	TrackNumArtists(track Handle) int
	// TrackArtist returns a borrowed artist.
	TrackArtist(track Handle, index int) Handle
	// TrackAlbum returns a borrowed album.
	TrackAlbum(track Handle) Handle
	TrackIsAvailable(session, track Handle) bool
	TrackIsStarred(session, track Handle) bool
	TrackSetStarred(session Handle, tracks []Handle, star bool) Code
}

type AlbumAPI interface {
	AlbumAddRef(album Handle) Code
	AlbumRelease(album Handle) Code
	AlbumIsLoaded(album Handle) bool
	AlbumIsAvailable(album Handle) bool
	// AlbumArtist returns a borrowed artist.
	AlbumArtist(album Handle) Handle
	// AlbumCover returns the cover image id, nil when the album has none.
	AlbumCover(album Handle) []byte
	AlbumName(album Handle) string
	AlbumYear(album Handle) int
	AlbumType(album Handle) AlbumType
}

type ArtistAPI interface {
	ArtistAddRef(artist Handle) Code
	ArtistRelease(artist Handle) Code
	ArtistIsLoaded(artist Handle) bool
	ArtistName(artist Handle) string
}

type ImageAPI interface {
	// ImageCreate returns an owned image for a ImageIDSize-byte id.
	ImageCreate(session Handle, id []byte) Handle
	// ImageCreateFromLink returns an owned image.
	ImageCreateFromLink(session, link Handle) Handle
	ImageAddRef(image Handle) Code
	ImageRelease(image Handle) Code
	ImageAddLoadCallback(image Handle, userdata uintptr) Code
	ImageRemoveLoadCallback(image Handle, userdata uintptr) Code
	ImageIsLoaded(image Handle) bool
	ImageError(image Handle) Code
	ImageFormat(image Handle) ImageFormat
	// ImageData returns a view of native memory, valid while the image lives.
	ImageData(image Handle) []byte
	ImageID(image Handle) []byte
}

type LinkAPI interface {
	// LinkCreateFromString returns an owned link, Invalid when uri does not parse.
	LinkCreateFromString(uri string) Handle
	LinkCreateFromTrack(track Handle, offsetMs int) Handle
	LinkCreateFromAlbum(album Handle) Handle
	LinkCreateFromAlbumCover(album Handle) Handle
	LinkCreateFromArtist(artist Handle) Handle
	LinkCreateFromSearch(search Handle) Handle
	LinkAddRef(link Handle) Code
	LinkRelease(link Handle) Code
	LinkAsString(link Handle) string
	LinkType(link Handle) LinkType
	// LinkAsTrack, LinkAsAlbum and LinkAsArtist return borrowed references.
	LinkAsTrack(link Handle) Handle
	LinkAsAlbum(link Handle) Handle
	LinkAsArtist(link Handle) Handle
}

type SearchAPI interface {
	// SearchCreate returns an owned search; SearchComplete fires with userdata.
	SearchCreate(session Handle, p SearchParams, userdata uintptr) Handle
	// RadioSearchCreate returns an owned search; SearchComplete fires with userdata.
	RadioSearchCreate(session Handle, fromYear, toYear int, genres RadioGenre, userdata uintptr) Handle
	SearchAddRef(search Handle) Code
	SearchRelease(search Handle) Code
	SearchIsLoaded(search Handle) bool
	SearchError(search Handle) Code
	SearchQuery(search Handle) string
	SearchDidYouMean(search Handle) string
	SearchNumTracks(search Handle) int
	SearchTrack(search Handle, index int) Handle
	SearchNumAlbums(search Handle) int
	SearchAlbum(search Handle, index int) Handle
	SearchNumArtists(search Handle) int
	SearchArtist(search Handle, index int) Handle
	SearchTotalTracks(search Handle) int
	SearchTotalAlbums(search Handle) int
	SearchTotalArtists(search Handle) int
}

type UserAPI interface {
	UserAddRef(user Handle) Code
	UserRelease(user Handle) Code
	UserIsLoaded(user Handle) bool
	UserCanonicalName(user Handle) string
	UserDisplayName(user Handle) string
	UserFullName(user Handle) string
	UserPicture(user Handle) string
}

type PlaylistAPI interface {
	PlaylistAddRef(playlist Handle) Code
	PlaylistRelease(playlist Handle) Code
	PlaylistIsLoaded(playlist Handle) bool
	PlaylistName(playlist Handle) string
	PlaylistNumTracks(playlist Handle) int
	PlaylistTrack(playlist Handle, index int) Handle
	PlaylistOwner(playlist Handle) Handle

	PlaylistContainerAddRef(container Handle) Code
	PlaylistContainerRelease(container Handle) Code
	PlaylistContainerNumPlaylists(container Handle) int
	PlaylistContainerPlaylist(container Handle, index int) Handle
}

type ToplistAPI interface {
	// ToplistBrowseCreate returns an owned browse; ToplistBrowseComplete
	// fires with userdata.
	ToplistBrowseCreate(session Handle, typ ToplistType, region ToplistRegion, username string, userdata uintptr) Handle
	ToplistBrowseAddRef(browse Handle) Code
	ToplistBrowseRelease(browse Handle) Code
	ToplistBrowseIsLoaded(browse Handle) bool
	ToplistBrowseError(browse Handle) Code
	ToplistBrowseNumTracks(browse Handle) int
	ToplistBrowseTrack(browse Handle, index int) Handle
	ToplistBrowseNumAlbums(browse Handle) int
	ToplistBrowseAlbum(browse Handle, index int) Handle
	ToplistBrowseNumArtists(browse Handle) int
	ToplistBrowseArtist(browse Handle, index int) Handle
}
