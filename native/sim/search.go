package sim

import (
	"cmp"
	"slices"
	"strings"

	"github.com/wippyai/libspot/native"
)

type searchData struct {
	query      string
	didYouMean string
	tracks     []native.Handle
	albums     []native.Handle
	artists    []native.Handle
	totals     [3]int
	err        native.Code
	loaded     bool
}

type toplistData struct {
	tracks  []native.Handle
	albums  []native.Handle
	artists []native.Handle
	err     native.Code
	loaded  bool
}

// SearchCreate implements native.Library.
func (l *Library) SearchCreate(session native.Handle, p native.SearchParams, userdata uintptr) native.Handle {
	defer l.enter()()
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.lookup(session, kindSession, "sp_search_create") == nil {
		return native.Invalid
	}

	tokens := words(p.Query)
	var tracks, albums, artists []native.Handle
	for _, h := range l.catalog(kindTrack) {
		t := l.objects[h].track
		if t.err != native.OK {
			continue
		}
		a := l.objects[t.album].album
		text := append(words(t.name), words(a.name)...)
		text = append(text, words(l.objects[a.artist].artist.name)...)
		if len(tokens) > 0 && matches(tokens, text) {
			tracks = append(tracks, h)
		}
	}
	for _, h := range l.catalog(kindAlbum) {
		a := l.objects[h].album
		text := append(words(a.name), words(l.objects[a.artist].artist.name)...)
		if len(tokens) > 0 && matches(tokens, text) {
			albums = append(albums, h)
		}
	}
	for _, h := range l.catalog(kindArtist) {
		if len(tokens) > 0 && matches(tokens, words(l.objects[h].artist.name)) {
			artists = append(artists, h)
		}
	}

	s := &searchData{
		query:      p.Query,
		didYouMean: l.suggest(tokens),
		tracks:     window(tracks, p.TrackOffset, p.TrackCount),
		albums:     window(albums, p.AlbumOffset, p.AlbumCount),
		artists:    window(artists, p.ArtistOffset, p.ArtistCount),
		totals:     [3]int{len(tracks), len(albums), len(artists)},
		err:        native.IsLoading,
	}
	return l.startSearch(s, userdata)
}

// RadioSearchCreate implements native.Library.
func (l *Library) RadioSearchCreate(session native.Handle, fromYear, toYear int, genres native.RadioGenre, userdata uintptr) native.Handle {
	defer l.enter()()
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.lookup(session, kindSession, "sp_radio_search_create") == nil || fromYear > toYear {
		return native.Invalid
	}

	var tracks, albums []native.Handle
	seenArtist := make(map[native.Handle]bool)
	var artists []native.Handle
	for _, h := range l.catalog(kindAlbum) {
		a := l.objects[h].album
		if a.genres&genres == 0 || a.year < fromYear || a.year > toYear {
			continue
		}
		albums = append(albums, h)
		if !seenArtist[a.artist] {
			seenArtist[a.artist] = true
			artists = append(artists, a.artist)
		}
		for _, th := range a.tracks {
			if t := l.objects[th].track; t.err == native.OK && t.available {
				tracks = append(tracks, th)
			}
		}
	}
	l.byPopularity(tracks)

	s := &searchData{
		tracks:  tracks,
		albums:  albums,
		artists: artists,
		totals:  [3]int{len(tracks), len(albums), len(artists)},
		err:     native.IsLoading,
	}
	return l.startSearch(s, userdata)
}

// startSearch registers s and schedules its completion. Callers hold l.mu.
func (l *Library) startSearch(s *searchData, userdata uintptr) native.Handle {
	h := l.alloc(&object{kind: kindSearch, refs: 1, search: s})
	l.post(func() {
		l.mu.Lock()
		if l.objects[h].freed {
			l.mu.Unlock()
			return
		}
		s.loaded = true
		s.err = native.OK
		completions := l.completions
		l.mu.Unlock()

		if completions != nil && completions.SearchComplete != nil {
			completions.SearchComplete(h, userdata)
		}
	})
	return h
}

// catalog lists the pinned objects of kind in allocation order.
// Callers hold l.mu.
func (l *Library) catalog(kind objKind) []native.Handle {
	var out []native.Handle
	for h, o := range l.objects {
		if o.pinned && o.kind == kind {
			out = append(out, h)
		}
	}
	slices.Sort(out)
	return out
}

func (l *Library) byPopularity(tracks []native.Handle) {
	slices.SortStableFunc(tracks, func(a, b native.Handle) int {
		return cmp.Compare(l.objects[b].track.popularity, l.objects[a].track.popularity)
	})
}

// suggest returns a corrected query when some token matches no catalog word
// but is within two edits of one. Callers hold l.mu.
func (l *Library) suggest(tokens []string) string {
	vocab := l.vocabulary()
	corrected := make([]string, len(tokens))
	changed := false
	for i, tok := range tokens {
		corrected[i] = tok
		if prefixesAny(tok, vocab) {
			continue
		}
		best, bestDist := "", 3
		for _, w := range vocab {
			if d := levenshtein(tok, w); d < bestDist {
				best, bestDist = w, d
			}
		}
		if best != "" {
			corrected[i] = best
			changed = true
		}
	}
	if !changed {
		return ""
	}
	return strings.Join(corrected, " ")
}

func prefixesAny(tok string, vocab []string) bool {
	for _, w := range vocab {
		if strings.HasPrefix(w, tok) {
			return true
		}
	}
	return false
}

func (l *Library) vocabulary() []string {
	seen := make(map[string]bool)
	add := func(s string) {
		for _, w := range words(s) {
			seen[w] = true
		}
	}
	for _, o := range l.objects {
		if !o.pinned {
			continue
		}
		switch o.kind {
		case kindArtist:
			add(o.artist.name)
		case kindAlbum:
			add(o.album.name)
		case kindTrack:
			add(o.track.name)
		}
	}
	out := make([]string, 0, len(seen))
	for w := range seen {
		out = append(out, w)
	}
	slices.Sort(out)
	return out
}

func window(hs []native.Handle, offset, count int) []native.Handle {
	if offset < 0 || offset >= len(hs) || count <= 0 {
		return nil
	}
	return hs[offset:min(len(hs), offset+count)]
}

func (l *Library) searchField(search native.Handle, op string, fn func(s *searchData) int) int {
	return get(l, search, kindSearch, op, func(o *object) int { return fn(o.search) })
}

func (l *Library) SearchAddRef(search native.Handle) native.Code {
	defer l.enter()()
	return l.addRef(search, kindSearch, "sp_search_add_ref")
}

func (l *Library) SearchRelease(search native.Handle) native.Code {
	defer l.enter()()
	return l.release(search, kindSearch, "sp_search_release")
}

func (l *Library) SearchIsLoaded(search native.Handle) bool {
	defer l.enter()()
	return get(l, search, kindSearch, "sp_search_is_loaded", func(o *object) bool { return o.search.loaded })
}

func (l *Library) SearchError(search native.Handle) native.Code {
	defer l.enter()()
	l.mu.Lock()
	defer l.mu.Unlock()
	o := l.lookup(search, kindSearch, "sp_search_error")
	if o == nil {
		return native.InvalidIndata
	}
	return o.search.err
}

func (l *Library) SearchQuery(search native.Handle) string {
	defer l.enter()()
	return get(l, search, kindSearch, "sp_search_query", func(o *object) string { return o.search.query })
}

func (l *Library) SearchDidYouMean(search native.Handle) string {
	defer l.enter()()
	return get(l, search, kindSearch, "sp_search_did_you_mean", func(o *object) string {
		if !o.search.loaded {
			return ""
		}
		return o.search.didYouMean
	})
}

// loadedAt returns hs[index] once the search has loaded.
func loadedAt(loaded bool, hs []native.Handle, index int) native.Handle {
	if !loaded {
		return native.Invalid
	}
	return at(hs, index)
}

func loadedLen(loaded bool, hs []native.Handle) int {
	if !loaded {
		return 0
	}
	return len(hs)
}

func (l *Library) SearchNumTracks(search native.Handle) int {
	defer l.enter()()
	return l.searchField(search, "sp_search_num_tracks", func(s *searchData) int { return loadedLen(s.loaded, s.tracks) })
}

func (l *Library) SearchTrack(search native.Handle, index int) native.Handle {
	defer l.enter()()
	return get(l, search, kindSearch, "sp_search_track", func(o *object) native.Handle {
		return loadedAt(o.search.loaded, o.search.tracks, index)
	})
}

func (l *Library) SearchNumAlbums(search native.Handle) int {
	defer l.enter()()
	return l.searchField(search, "sp_search_num_albums", func(s *searchData) int { return loadedLen(s.loaded, s.albums) })
}

func (l *Library) SearchAlbum(search native.Handle, index int) native.Handle {
	defer l.enter()()
	return get(l, search, kindSearch, "sp_search_album", func(o *object) native.Handle {
		return loadedAt(o.search.loaded, o.search.albums, index)
	})
}

func (l *Library) SearchNumArtists(search native.Handle) int {
	defer l.enter()()
	return l.searchField(search, "sp_search_num_artists", func(s *searchData) int { return loadedLen(s.loaded, s.artists) })
}

func (l *Library) SearchArtist(search native.Handle, index int) native.Handle {
	defer l.enter()()
	return get(l, search, kindSearch, "sp_search_artist", func(o *object) native.Handle {
		return loadedAt(o.search.loaded, o.search.artists, index)
	})
}

func (l *Library) SearchTotalTracks(search native.Handle) int {
	defer l.enter()()
	return l.searchField(search, "sp_search_total_tracks", func(s *searchData) int { return s.totals[0] })
}

func (l *Library) SearchTotalAlbums(search native.Handle) int {
	defer l.enter()()
	return l.searchField(search, "sp_search_total_albums", func(s *searchData) int { return s.totals[1] })
}

func (l *Library) SearchTotalArtists(search native.Handle) int {
	defer l.enter()()
	return l.searchField(search, "sp_search_total_artists", func(s *searchData) int { return s.totals[2] })
}

// ToplistBrowseCreate implements native.Library.
func (l *Library) ToplistBrowseCreate(session native.Handle, typ native.ToplistType, region native.ToplistRegion, username string, userdata uintptr) native.Handle {
	defer l.enter()()
	l.mu.Lock()
	defer l.mu.Unlock()
	so := l.lookup(session, kindSession, "sp_toplistbrowse_create")
	if so == nil {
		return native.Invalid
	}

	tb := &toplistData{err: native.IsLoading}
	if region == native.ToplistRegionUser && username == "" && !so.session.user.Valid() {
		tb.err = native.PermissionDenied
	}

	var tracks []native.Handle
	for _, h := range l.catalog(kindTrack) {
		if t := l.objects[h].track; t.err == native.OK && t.available {
			tracks = append(tracks, h)
		}
	}
	l.byPopularity(tracks)
	switch typ {
	case native.ToplistTracks:
		tb.tracks = tracks
	case native.ToplistAlbums, native.ToplistArtists:
		seenAlbum := make(map[native.Handle]bool)
		seenArtist := make(map[native.Handle]bool)
		for _, th := range tracks {
			album := l.objects[th].track.album
			artist := l.objects[album].album.artist
			if !seenAlbum[album] {
				seenAlbum[album] = true
				tb.albums = append(tb.albums, album)
			}
			if !seenArtist[artist] {
				seenArtist[artist] = true
				tb.artists = append(tb.artists, artist)
			}
		}
		if typ == native.ToplistAlbums {
			tb.artists = nil
		} else {
			tb.albums = nil
		}
	default:
		return native.Invalid
	}

	h := l.alloc(&object{kind: kindToplist, refs: 1, toplist: tb})
	l.post(func() {
		l.mu.Lock()
		if l.objects[h].freed {
			l.mu.Unlock()
			return
		}
		tb.loaded = true
		if tb.err == native.IsLoading {
			tb.err = native.OK
		}
		completions := l.completions
		l.mu.Unlock()

		if completions != nil && completions.ToplistBrowseComplete != nil {
			completions.ToplistBrowseComplete(h, userdata)
		}
	})
	return h
}

func (l *Library) ToplistBrowseAddRef(browse native.Handle) native.Code {
	defer l.enter()()
	return l.addRef(browse, kindToplist, "sp_toplistbrowse_add_ref")
}

func (l *Library) ToplistBrowseRelease(browse native.Handle) native.Code {
	defer l.enter()()
	return l.release(browse, kindToplist, "sp_toplistbrowse_release")
}

func (l *Library) ToplistBrowseIsLoaded(browse native.Handle) bool {
	defer l.enter()()
	return get(l, browse, kindToplist, "sp_toplistbrowse_is_loaded", func(o *object) bool { return o.toplist.loaded })
}

func (l *Library) ToplistBrowseError(browse native.Handle) native.Code {
	defer l.enter()()
	l.mu.Lock()
	defer l.mu.Unlock()
	o := l.lookup(browse, kindToplist, "sp_toplistbrowse_error")
	if o == nil {
		return native.InvalidIndata
	}
	return o.toplist.err
}

func (l *Library) ToplistBrowseNumTracks(browse native.Handle) int {
	defer l.enter()()
	return get(l, browse, kindToplist, "sp_toplistbrowse_num_tracks", func(o *object) int {
		return loadedLen(o.toplist.loaded, o.toplist.tracks)
	})
}

func (l *Library) ToplistBrowseTrack(browse native.Handle, index int) native.Handle {
	defer l.enter()()
	return get(l, browse, kindToplist, "sp_toplistbrowse_track", func(o *object) native.Handle {
		return loadedAt(o.toplist.loaded, o.toplist.tracks, index)
	})
}

func (l *Library) ToplistBrowseNumAlbums(browse native.Handle) int {
	defer l.enter()()
	return get(l, browse, kindToplist, "sp_toplistbrowse_num_albums", func(o *object) int {
		return loadedLen(o.toplist.loaded, o.toplist.albums)
	})
}

func (l *Library) ToplistBrowseAlbum(browse native.Handle, index int) native.Handle {
	defer l.enter()()
	return get(l, browse, kindToplist, "sp_toplistbrowse_album", func(o *object) native.Handle {
		return loadedAt(o.toplist.loaded, o.toplist.albums, index)
	})
}

func (l *Library) ToplistBrowseNumArtists(browse native.Handle) int {
	defer l.enter()()
	return get(l, browse, kindToplist, "sp_toplistbrowse_num_artists", func(o *object) int {
		return loadedLen(o.toplist.loaded, o.toplist.artists)
	})
}

func (l *Library) ToplistBrowseArtist(browse native.Handle, index int) native.Handle {
	defer l.enter()()
	return get(l, browse, kindToplist, "sp_toplistbrowse_artist", func(o *object) native.Handle {
		return loadedAt(o.toplist.loaded, o.toplist.artists, index)
	})
}
