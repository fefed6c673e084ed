package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/wippyai/libspot/native"
	"github.com/wippyai/libspot/spotify"
)

const resultLimit = 10

type pauser interface {
	Pause()
	Resume()
}

// shell runs text commands against a logged-in session.
type shell struct {
	s       *spotify.Session
	sink    spotify.AudioSink
	timeout time.Duration

	mu     sync.Mutex
	notify func(string)
	cancel []func()
}

type command struct {
	run   func(sh *shell, ctx context.Context, args []string) (string, error)
	usage string
}

var commands map[string]command

func init() {
	commands = map[string]command{
		"help":      {(*shell).help, "help"},
		"login":     {(*shell).loginCmd, "login <user> <password>"},
		"logout":    {(*shell).logout, "logout"},
		"whoami":    {(*shell).whoami, "whoami"},
		"friends":   {(*shell).friends, "friends"},
		"state":     {(*shell).state, "state"},
		"search":    {(*shell).search, "search <query>"},
		"radio":     {(*shell).radio, "radio <from-year> <to-year> <genre>[,<genre>...]"},
		"toplist":   {(*shell).toplist, "toplist tracks|albums|artists [everywhere|<country>|user:<name>]"},
		"playlists": {(*shell).playlists, "playlists"},
		"track":     {(*shell).track, "track <uri>"},
		"star":      {(*shell).star, "star <uri> [off]"},
		"play":      {(*shell).play, "play <uri>"},
		"pause":     {(*shell).pause, "pause"},
		"resume":    {(*shell).resume, "resume"},
		"seek":      {(*shell).seek, "seek <seconds>"},
		"stop":      {(*shell).stop, "stop"},
	}
}

func newShell(s *spotify.Session, sink spotify.AudioSink, timeout time.Duration) *shell {
	sh := &shell{s: s, sink: sink, timeout: timeout}
	sh.cancel = append(sh.cancel,
		s.OnMessageToUser(func(e spotify.SessionEvent) { sh.post("message: " + e.Message) }),
		s.OnConnectionError(func(e spotify.SessionEvent) { sh.post(fmt.Sprintf("connection error: %v", e.Status)) }),
		s.OnStreamingError(func(e spotify.SessionEvent) { sh.post(fmt.Sprintf("streaming error: %v", e.Status)) }),
		s.OnPlayTokenLost(func(spotify.SessionEvent) { sh.post("playback paused: account in use elsewhere") }),
		s.OnEndOfTrack(func(spotify.SessionEvent) { sh.post("end of track") }),
	)
	return sh
}

// setNotify routes asynchronous notices. Nil drops them.
func (sh *shell) setNotify(fn func(string)) {
	sh.mu.Lock()
	sh.notify = fn
	sh.mu.Unlock()
}

func (sh *shell) post(msg string) {
	sh.mu.Lock()
	fn := sh.notify
	sh.mu.Unlock()
	if fn != nil {
		fn(msg)
	}
}

func (sh *shell) close() {
	for _, c := range sh.cancel {
		c()
	}
	sh.cancel = nil
}

func (sh *shell) wait(ctx context.Context) (context.Context, context.CancelFunc) {
	if sh.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, sh.timeout)
}

// exec runs one command line.
func (sh *shell) exec(ctx context.Context, line string) (string, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return "", nil
	}
	cmd, ok := commands[fields[0]]
	if !ok {
		return "", fmt.Errorf("unknown command %q (try help)", fields[0])
	}
	return cmd.run(sh, ctx, fields[1:])
}

func repl(ctx context.Context, sh *shell, in io.Reader, out io.Writer) error {
	sh.setNotify(func(msg string) { fmt.Fprintf(out, "* %s\n", msg) })
	defer sh.setNotify(nil)

	sc := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "> ")
		if !sc.Scan() {
			return sc.Err()
		}
		line := strings.TrimSpace(sc.Text())
		if line == "quit" || line == "exit" {
			return nil
		}
		res, err := sh.exec(ctx, line)
		if err != nil {
			fmt.Fprintf(out, "error: %v\n", err)
			continue
		}
		if res != "" {
			fmt.Fprintln(out, res)
		}
		if ctx.Err() != nil {
			return nil
		}
	}
}

func (sh *shell) help(context.Context, []string) (string, error) {
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	slices.Sort(names)
	var b strings.Builder
	for _, name := range names {
		fmt.Fprintf(&b, "  %s\n", commands[name].usage)
	}
	b.WriteString("  quit")
	return b.String(), nil
}

func (sh *shell) login(ctx context.Context, username, password string) error {
	if err := sh.s.Login(username, password); err != nil {
		return err
	}
	wctx, cancel := sh.wait(ctx)
	defer cancel()
	return sh.s.WaitForLogin(wctx)
}

func (sh *shell) loginCmd(ctx context.Context, args []string) (string, error) {
	if len(args) != 2 {
		return "", usageErr("login")
	}
	if err := sh.login(ctx, args[0], args[1]); err != nil {
		return "", err
	}
	return "logged in as " + args[0], nil
}

func (sh *shell) logout(ctx context.Context, _ []string) (string, error) {
	if err := sh.s.Logout(); err != nil {
		return "", err
	}
	wctx, cancel := sh.wait(ctx)
	defer cancel()
	if err := sh.s.WaitForLogout(wctx); err != nil {
		return "", err
	}
	return "logged out", nil
}

func (sh *shell) whoami(context.Context, []string) (string, error) {
	u, err := sh.s.User()
	if err != nil {
		return "", err
	}
	if u == nil {
		return "not logged in", nil
	}
	name, err := u.CanonicalName()
	if err != nil {
		return "", err
	}
	display, err := u.DisplayName()
	if err != nil {
		return "", err
	}
	country, err := sh.s.UserCountry()
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s (%s) %s", display, name, country), nil
}

func (sh *shell) friends(context.Context, []string) (string, error) {
	users, err := sh.s.Friends()
	if err != nil {
		return "", err
	}
	if len(users) == 0 {
		return "no friends", nil
	}
	var b strings.Builder
	for _, u := range users {
		name, err := u.CanonicalName()
		if err != nil {
			return "", err
		}
		display, err := u.DisplayName()
		if err != nil {
			return "", err
		}
		fmt.Fprintf(&b, "  %s (%s)\n", display, name)
	}
	return strings.TrimRight(b.String(), "\n"), nil
}

func (sh *shell) state(context.Context, []string) (string, error) {
	cs, err := sh.s.ConnectionState()
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("session %s, connection %s", sh.s.State(), cs), nil
}

func (sh *shell) search(ctx context.Context, args []string) (string, error) {
	if len(args) == 0 {
		return "", usageErr("search")
	}
	sr, err := sh.s.Search(strings.Join(args, " "), nil)
	if err != nil {
		return "", err
	}
	defer sr.Dispose()
	return sh.searchResults(ctx, sr)
}

func (sh *shell) radio(ctx context.Context, args []string) (string, error) {
	if len(args) != 3 {
		return "", usageErr("radio")
	}
	from, err := strconv.Atoi(args[0])
	if err != nil {
		return "", fmt.Errorf("bad year %q", args[0])
	}
	to, err := strconv.Atoi(args[1])
	if err != nil {
		return "", fmt.Errorf("bad year %q", args[1])
	}
	genres, err := parseGenres(args[2])
	if err != nil {
		return "", err
	}
	sr, err := sh.s.RadioSearch(from, to, genres)
	if err != nil {
		return "", err
	}
	defer sr.Dispose()
	return sh.searchResults(ctx, sr)
}

func parseGenres(s string) (native.RadioGenre, error) {
	var out native.RadioGenre
	for _, name := range strings.Split(s, ",") {
		found := false
		for _, g := range native.GenreNames {
			if g.Name == name {
				out |= g.Genre
				found = true
				break
			}
		}
		if !found {
			return 0, fmt.Errorf("unknown genre %q", name)
		}
	}
	return out, nil
}

func (sh *shell) searchResults(ctx context.Context, sr *spotify.Search) (string, error) {
	wctx, cancel := sh.wait(ctx)
	defer cancel()
	if err := sr.Wait(wctx); err != nil {
		return "", err
	}

	var b strings.Builder
	if dym, err := sr.DidYouMean(); err == nil && dym != "" {
		fmt.Fprintf(&b, "did you mean %q?\n", dym)
	}
	total, err := sr.TotalTracks()
	if err != nil {
		return "", err
	}
	tracks, err := sr.Tracks()
	if err != nil {
		return "", err
	}
	fmt.Fprintf(&b, "%d tracks\n", total)
	if err := writeTracks(&b, tracks); err != nil {
		return "", err
	}
	artists, err := sr.Artists()
	if err != nil {
		return "", err
	}
	if len(artists) > 0 {
		b.WriteString("artists:")
		for _, a := range artists {
			name, err := a.Name()
			if err != nil {
				return "", err
			}
			b.WriteString(" " + name)
		}
	}
	return strings.TrimRight(b.String(), "\n"), nil
}

func writeTracks(w io.Writer, tracks []*spotify.Track) error {
	for i, t := range tracks {
		if i == resultLimit {
			fmt.Fprintf(w, "  ... %d more\n", len(tracks)-i)
			break
		}
		line, err := describeTrack(t)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "  %2d. %s\n", i+1, line)
	}
	return nil
}

func describeTrack(t *spotify.Track) (string, error) {
	loaded, err := t.IsLoaded()
	if err != nil {
		return "", err
	}
	if !loaded {
		return "(loading)", nil
	}
	name, err := t.Name()
	if err != nil {
		return "", err
	}
	d, err := t.Duration()
	if err != nil {
		return "", err
	}
	artists, err := t.Artists()
	if err != nil {
		return "", err
	}
	var by []string
	for _, a := range artists {
		n, err := a.Name()
		if err != nil {
			return "", err
		}
		by = append(by, n)
	}
	var uri string
	if l, err := t.Link(0); err == nil {
		uri, _ = l.URI()
		l.Dispose()
	}
	return fmt.Sprintf("%s - %s [%s] %s", strings.Join(by, ", "), name, d.Round(time.Second), uri), nil
}

func (sh *shell) toplist(ctx context.Context, args []string) (string, error) {
	if len(args) < 1 || len(args) > 2 {
		return "", usageErr("toplist")
	}
	var typ native.ToplistType
	switch args[0] {
	case "tracks":
		typ = native.ToplistTracks
	case "albums":
		typ = native.ToplistAlbums
	case "artists":
		typ = native.ToplistArtists
	default:
		return "", usageErr("toplist")
	}

	var (
		tl  *spotify.Toplist
		err error
	)
	region := "everywhere"
	if len(args) == 2 {
		region = args[1]
	}
	switch {
	case region == "everywhere":
		tl, err = sh.s.Toplist(typ, native.ToplistRegionEverywhere)
	case strings.HasPrefix(region, "user:"):
		tl, err = sh.s.UserToplist(typ, strings.TrimPrefix(region, "user:"))
	case len(region) == 2:
		tl, err = sh.s.Toplist(typ, native.CountryRegion(strings.ToUpper(region)))
	default:
		return "", fmt.Errorf("bad region %q", region)
	}
	if err != nil {
		return "", err
	}
	defer tl.Dispose()

	wctx, cancel := sh.wait(ctx)
	defer cancel()
	if err := tl.Wait(wctx); err != nil {
		return "", err
	}

	var b strings.Builder
	switch typ {
	case native.ToplistTracks:
		tracks, err := tl.Tracks()
		if err != nil {
			return "", err
		}
		if err := writeTracks(&b, tracks); err != nil {
			return "", err
		}
	case native.ToplistAlbums:
		albums, err := tl.Albums()
		if err != nil {
			return "", err
		}
		for i, a := range albums[:min(len(albums), resultLimit)] {
			name, err := a.Name()
			if err != nil {
				return "", err
			}
			year, err := a.Year()
			if err != nil {
				return "", err
			}
			fmt.Fprintf(&b, "  %2d. %s (%d)\n", i+1, name, year)
		}
	case native.ToplistArtists:
		artists, err := tl.Artists()
		if err != nil {
			return "", err
		}
		for i, a := range artists[:min(len(artists), resultLimit)] {
			name, err := a.Name()
			if err != nil {
				return "", err
			}
			fmt.Fprintf(&b, "  %2d. %s\n", i+1, name)
		}
	}
	return strings.TrimRight(b.String(), "\n"), nil
}

func (sh *shell) playlists(context.Context, []string) (string, error) {
	pc, err := sh.s.PlaylistContainer()
	if err != nil {
		return "", err
	}
	if pc == nil {
		return "not logged in", nil
	}
	pls, err := pc.Playlists()
	if err != nil {
		return "", err
	}
	var b strings.Builder
	for _, p := range pls {
		name, err := p.Name()
		if err != nil {
			return "", err
		}
		n, err := p.NumTracks()
		if err != nil {
			return "", err
		}
		fmt.Fprintf(&b, "  %s (%d tracks)\n", name, n)
	}
	return strings.TrimRight(b.String(), "\n"), nil
}

// resolveTrack parses uri and returns the track it names. The caller
// disposes the returned link.
func (sh *shell) resolveTrack(uri string) (*spotify.Track, *spotify.Link, error) {
	l, err := sh.s.ParseLink(uri)
	if err != nil {
		return nil, nil, err
	}
	t, err := l.Track()
	if err != nil {
		l.Dispose()
		return nil, nil, err
	}
	if t == nil {
		l.Dispose()
		return nil, nil, fmt.Errorf("%s is not a track", uri)
	}
	return t, l, nil
}

func (sh *shell) track(_ context.Context, args []string) (string, error) {
	if len(args) != 1 {
		return "", usageErr("track")
	}
	t, l, err := sh.resolveTrack(args[0])
	if err != nil {
		return "", err
	}
	defer l.Dispose()

	line, err := describeTrack(t)
	if err != nil {
		return "", err
	}
	album, err := t.Album()
	if err != nil {
		return "", err
	}
	if album != nil {
		name, err := album.Name()
		if err != nil {
			return "", err
		}
		year, err := album.Year()
		if err != nil {
			return "", err
		}
		line += fmt.Sprintf("\n  from %s (%d)", name, year)
	}
	available, err := t.IsAvailable()
	if err != nil {
		return "", err
	}
	if !available {
		line += "\n  not available"
	}
	return line, nil
}

func (sh *shell) star(_ context.Context, args []string) (string, error) {
	if len(args) < 1 || len(args) > 2 {
		return "", usageErr("star")
	}
	on := len(args) == 1 || args[1] != "off"
	t, l, err := sh.resolveTrack(args[0])
	if err != nil {
		return "", err
	}
	defer l.Dispose()
	if err := t.SetStarred(on); err != nil {
		return "", err
	}
	if on {
		return "starred", nil
	}
	return "unstarred", nil
}

func (sh *shell) play(_ context.Context, args []string) (string, error) {
	if len(args) != 1 {
		return "", usageErr("play")
	}
	t, l, err := sh.resolveTrack(args[0])
	if err != nil {
		return "", err
	}
	defer l.Dispose()

	if err := sh.s.PlayerLoad(t); err != nil {
		return "", err
	}
	if err := sh.s.PlayerPlay(true); err != nil {
		return "", err
	}
	if p, ok := sh.sink.(pauser); ok {
		p.Resume()
	}
	name, _ := t.Name()
	return "playing " + name, nil
}

func (sh *shell) pause(context.Context, []string) (string, error) {
	if err := sh.s.PlayerPlay(false); err != nil {
		return "", err
	}
	if p, ok := sh.sink.(pauser); ok {
		p.Pause()
	}
	return "paused", nil
}

func (sh *shell) resume(context.Context, []string) (string, error) {
	if err := sh.s.PlayerPlay(true); err != nil {
		return "", err
	}
	if p, ok := sh.sink.(pauser); ok {
		p.Resume()
	}
	return "resumed", nil
}

func (sh *shell) seek(_ context.Context, args []string) (string, error) {
	if len(args) != 1 {
		return "", usageErr("seek")
	}
	secs, err := strconv.ParseFloat(args[0], 64)
	if err != nil || secs < 0 {
		return "", fmt.Errorf("bad offset %q", args[0])
	}
	if err := sh.s.PlayerSeek(time.Duration(secs * float64(time.Second))); err != nil {
		return "", err
	}
	return fmt.Sprintf("at %s", time.Duration(secs*float64(time.Second))), nil
}

func (sh *shell) stop(context.Context, []string) (string, error) {
	if err := sh.s.PlayerUnload(); err != nil {
		return "", err
	}
	return "stopped", nil
}

func usageErr(name string) error {
	return fmt.Errorf("usage: %s", commands[name].usage)
}
