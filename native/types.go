package native

// APIVersion is the native ABI version this binding is written against.
const APIVersion = 12

// Bitrate selects a preferred streaming bitrate.
type Bitrate int32

const (
	Bitrate160k Bitrate = iota
	Bitrate320k
	Bitrate96k
)

func (b Bitrate) String() string {
	switch b {
	case Bitrate160k:
		return "160k"
	case Bitrate320k:
		return "320k"
	case Bitrate96k:
		return "96k"
	default:
		return "unknown"
	}
}

// ConnectionState is the native library's view of the connection.
type ConnectionState int32

const (
	ConnectionLoggedOut ConnectionState = iota
	ConnectionLoggedIn
	ConnectionDisconnected
	ConnectionUndefined
	ConnectionOffline
)

func (s ConnectionState) String() string {
	switch s {
	case ConnectionLoggedOut:
		return "logged_out"
	case ConnectionLoggedIn:
		return "logged_in"
	case ConnectionDisconnected:
		return "disconnected"
	case ConnectionOffline:
		return "offline"
	default:
		return "undefined"
	}
}

// SampleType describes PCM sample encoding.
type SampleType int32

const (
	SampleInt16NativeEndian SampleType = iota
)

// AudioFormat describes a block of delivered PCM frames.
type AudioFormat struct {
	SampleType SampleType
	SampleRate int32
	Channels   int32
}

// BytesPerFrame is the size of one frame of interleaved 16-bit samples.
func (f AudioFormat) BytesPerFrame() int {
	return int(f.Channels) * 2
}

// AudioBufferStats reports the embedder's playback buffer state.
type AudioBufferStats struct {
	Samples  int32
	Stutters int32
}

// AlbumType classifies an album.
type AlbumType int32

const (
	AlbumTypeAlbum AlbumType = iota
	AlbumTypeSingle
	AlbumTypeCompilation
	AlbumTypeUnknown
)

// LinkType classifies a link.
type LinkType int32

const (
	LinkInvalid LinkType = iota
	LinkTrack
	LinkAlbum
	LinkArtist
	LinkSearch
	LinkPlaylist
	LinkProfile
	LinkStarred
	LinkLocalTrack
	LinkImage
)

func (t LinkType) String() string {
	switch t {
	case LinkTrack:
		return "track"
	case LinkAlbum:
		return "album"
	case LinkArtist:
		return "artist"
	case LinkSearch:
		return "search"
	case LinkPlaylist:
		return "playlist"
	case LinkProfile:
		return "profile"
	case LinkStarred:
		return "starred"
	case LinkLocalTrack:
		return "local"
	case LinkImage:
		return "image"
	default:
		return "invalid"
	}
}

// ImageFormat is the encoding of image data.
type ImageFormat int32

const (
	ImageFormatUnknown ImageFormat = iota - 1
	ImageFormatJPEG
)

// ImageIDSize is the length of a native image identifier.
const ImageIDSize = 20

// ToplistType selects what a toplist browse returns.
type ToplistType int32

const (
	ToplistArtists ToplistType = iota
	ToplistAlbums
	ToplistTracks
)

// ToplistRegion is either a two-letter country code packed as
// (c0<<8 | c1) or one of the special regions below.
type ToplistRegion int32

const (
	ToplistRegionEverywhere ToplistRegion = 0
	ToplistRegionUser       ToplistRegion = 1
)

// CountryRegion packs a two-letter country code.
func CountryRegion(code string) ToplistRegion {
	if len(code) != 2 {
		return ToplistRegionEverywhere
	}
	return ToplistRegion(int32(code[0])<<8 | int32(code[1]))
}

// RadioGenre is a bitmask of radio genres.
type RadioGenre uint32

const (
	GenreAltPopRock RadioGenre = 1 << iota
	GenreBlues
	GenreCountry
	GenreDisco
	GenreFunk
	GenreHardRock
	GenreHeavyMetal
	GenreRap
	GenreHouse
	GenreJazz
	GenreNewWave
	GenreRnB
	GenrePop
	GenrePunk
	GenreReggae
	GenrePopRock
	GenreSoul
	GenreTechno
)

// GenreNames lists the single-bit genres in bit order.
var GenreNames = []struct {
	Name  string
	Genre RadioGenre
}{
	{"alt-pop-rock", GenreAltPopRock},
	{"blues", GenreBlues},
	{"country", GenreCountry},
	{"disco", GenreDisco},
	{"funk", GenreFunk},
	{"hard-rock", GenreHardRock},
	{"heavy-metal", GenreHeavyMetal},
	{"rap", GenreRap},
	{"house", GenreHouse},
	{"jazz", GenreJazz},
	{"new-wave", GenreNewWave},
	{"rnb", GenreRnB},
	{"pop", GenrePop},
	{"punk", GenrePunk},
	{"reggae", GenreReggae},
	{"pop-rock", GenrePopRock},
	{"soul", GenreSoul},
	{"techno", GenreTechno},
}

// SearchParams is the argument block of SearchCreate.
type SearchParams struct {
	Query        string
	TrackOffset  int
	TrackCount   int
	AlbumOffset  int
	AlbumCount   int
	ArtistOffset int
	ArtistCount  int
}
