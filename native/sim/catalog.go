package sim

import (
	"crypto/sha1"
	"hash/fnv"
	"strings"
	"unicode"

	"github.com/wippyai/libspot/native"
)

type trackSpec struct {
	name        string
	seconds     int
	popularity  int
	unavailable bool
	loading     bool
}

type albumSpec struct {
	name   string
	year   int
	typ    native.AlbumType
	genres native.RadioGenre
	tracks []trackSpec
}

type artistSpec struct {
	name   string
	albums []albumSpec
}

var catalogData = []artistSpec{
	{"Daft Punk", []albumSpec{
		{"Homework", 1997, native.AlbumTypeAlbum, native.GenreHouse | native.GenreTechno, []trackSpec{
			{name: "Da Funk", seconds: 328, popularity: 62},
			{name: "Around the World", seconds: 429, popularity: 74},
			{name: "Revolution 909", seconds: 326, popularity: 48},
			{name: "Teachers", seconds: 172, loading: true},
		}},
		{"Discovery", 2001, native.AlbumTypeAlbum, native.GenreHouse | native.GenreDisco | native.GenreFunk, []trackSpec{
			{name: "One More Time", seconds: 320, popularity: 81},
			{name: "Aerodynamic", seconds: 207, popularity: 66},
			{name: "Digital Love", seconds: 301, popularity: 72},
			{name: "Harder, Better, Faster, Stronger", seconds: 224, popularity: 83},
		}},
		{"Random Access Memories", 2013, native.AlbumTypeAlbum, native.GenreDisco | native.GenreFunk | native.GenrePop, []trackSpec{
			{name: "Give Life Back to Music", seconds: 274, popularity: 60},
			{name: "Instant Crush", seconds: 337, popularity: 75},
			{name: "Get Lucky", seconds: 369, popularity: 86},
		}},
	}},
	{"Justice", []albumSpec{
		{"Cross", 2007, native.AlbumTypeAlbum, native.GenreHouse | native.GenreTechno, []trackSpec{
			{name: "Genesis", seconds: 234, popularity: 58},
			{name: "D.A.N.C.E.", seconds: 242, popularity: 71},
			{name: "Phantom", seconds: 262, popularity: 52},
		}},
	}},
	{"Air", []albumSpec{
		{"Moon Safari", 1998, native.AlbumTypeAlbum, native.GenrePop | native.GenreAltPopRock, []trackSpec{
			{name: "La femme d'argent", seconds: 429, popularity: 55},
			{name: "Sexy Boy", seconds: 298, popularity: 64},
			{name: "Kelly Watch the Stars", seconds: 225, popularity: 57},
		}},
	}},
	{"Kraftwerk", []albumSpec{
		{"The Man-Machine", 1978, native.AlbumTypeAlbum, native.GenreTechno | native.GenreNewWave, []trackSpec{
			{name: "The Robots", seconds: 370, popularity: 61},
			{name: "Neon Lights", seconds: 543, popularity: 50},
			{name: "The Model", seconds: 218, popularity: 63},
		}},
		{"Computer World", 1981, native.AlbumTypeAlbum, native.GenreTechno | native.GenreNewWave, []trackSpec{
			{name: "Computer Love", seconds: 435, popularity: 56},
			{name: "Pocket Calculator", seconds: 295, popularity: 49},
			{name: "Home Computer", seconds: 378, popularity: 44, unavailable: true},
		}},
	}},
}

type userSpec struct {
	name      string
	password  string
	display   string
	full      string
	country   string
	banned    bool
	friends   []string
	playlists []playlistSpec
}

type playlistSpec struct {
	name   string
	tracks []string
}

var accounts = []userSpec{
	{
		name: "alice", password: "secret", display: "Alice", full: "Alice Liddell", country: "SE",
		friends: []string{"bob", "mallory"},
		playlists: []playlistSpec{
			{"Favourites", []string{"Get Lucky", "One More Time", "D.A.N.C.E.", "Sexy Boy"}},
			{"Robots", []string{"The Robots", "The Model", "Computer Love"}},
		},
	},
	{
		name: "bob", password: "hunter2", display: "Bob", full: "Bob Marley", country: "GB",
		friends: []string{"alice"},
		playlists: []playlistSpec{
			{"Mixtape", []string{"Da Funk", "Genesis", "Neon Lights"}},
		},
	},
	{name: "mallory", password: "x", display: "Mallory", country: "US", banned: true},
}

const idAlphabet = "0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"

// catalogID derives a stable 22 character base62 id.
func catalogID(kind, name string) string {
	h := fnv.New64a()
	h.Write([]byte(kind + ":" + name))
	x := h.Sum64()
	b := make([]byte, 22)
	for i := range b {
		if x == 0 {
			h.Write([]byte{byte(i)})
			x = h.Sum64()
		}
		b[i] = idAlphabet[x%62]
		x /= 62
	}
	return string(b)
}

func coverID(album string) []byte {
	sum := sha1.Sum([]byte("cover:" + album))
	return sum[:]
}

func words(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// matches reports whether every query token prefixes some word of text.
func matches(tokens, text []string) bool {
	for _, tok := range tokens {
		found := false
		for _, w := range text {
			if strings.HasPrefix(w, tok) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func levenshtein(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	prev := make([]int, len(rb)+1)
	cur := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(ra); i++ {
		cur[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			cur[j] = min(prev[j]+1, cur[j-1]+1, prev[j-1]+cost)
		}
		prev, cur = cur, prev
	}
	return prev[len(rb)]
}
