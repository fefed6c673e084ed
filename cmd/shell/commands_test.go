package main

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/wippyai/libspot/native"
	"github.com/wippyai/libspot/native/sim"
	"github.com/wippyai/libspot/spotify"
)

func newTestShell(t *testing.T) (*sim.Library, *shell) {
	t.Helper()
	lib := sim.New(sim.WithLatency(0))
	b := spotify.NewBinding(lib)
	s, err := b.CreateSession(spotify.Config{
		ApplicationKey: []byte{1},
		UserAgent:      "libspot-shell-test",
	})
	if err != nil {
		lib.Close()
		t.Fatalf("CreateSession: %v", err)
	}
	sh := newShell(s, discardSink{}, 5*time.Second)
	t.Cleanup(func() {
		sh.close()
		if err := b.Close(); err != nil {
			t.Errorf("Close: %v", err)
		}
	})
	if err := sh.login(context.Background(), "alice", "secret"); err != nil {
		t.Fatalf("login: %v", err)
	}
	return lib, sh
}

func TestExec(t *testing.T) {
	lib, sh := newTestShell(t)
	ctx := context.Background()

	tests := []struct {
		line string
		want []string
	}{
		{"whoami", []string{"alice", "SE"}},
		{"state", []string{"logged_in"}},
		{"friends", []string{"Bob (bob)", "Mallory (mallory)"}},
		{"search daft punk", []string{"tracks", "artists: Daft Punk"}},
		{"search daft punck", []string{`did you mean "daft punk"?`}},
		{"toplist tracks", []string{"Get Lucky"}},
		{"playlists", []string{"Favourites (4 tracks)", "Robots (3 tracks)"}},
		{"track " + lib.TrackURI("Get Lucky"), []string{"Daft Punk - Get Lucky", "from Random Access Memories (2013)"}},
		{"track " + lib.TrackURI("Home Computer"), []string{"not available"}},
		{"star " + lib.TrackURI("Sexy Boy"), []string{"starred"}},
		{"help", []string{"search <query>", "quit"}},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			out, err := sh.exec(ctx, tt.line)
			if err != nil {
				t.Fatalf("exec: %v", err)
			}
			for _, w := range tt.want {
				if !strings.Contains(out, w) {
					t.Fatalf("output missing %q:\n%s", w, out)
				}
			}
		})
	}
}

func TestExec_Errors(t *testing.T) {
	_, sh := newTestShell(t)
	ctx := context.Background()

	for _, line := range []string{
		"frobnicate",
		"search",
		"radio 2000 x house",
		"radio 2000 2010 polka",
		"toplist songs",
		"toplist tracks narnia",
		"track spotify:nothing",
		"seek -3",
	} {
		t.Run(line, func(t *testing.T) {
			if _, err := sh.exec(ctx, line); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestParseGenres(t *testing.T) {
	g, err := parseGenres("house,techno")
	if err != nil {
		t.Fatalf("parseGenres: %v", err)
	}
	if g != native.GenreHouse|native.GenreTechno {
		t.Fatalf("genres = %b", g)
	}
}

func TestRepl(t *testing.T) {
	_, sh := newTestShell(t)

	in := strings.NewReader("whoami\nbogus\nquit\nwhoami\n")
	var out bytes.Buffer
	if err := repl(context.Background(), sh, in, &out); err != nil {
		t.Fatalf("repl: %v", err)
	}
	got := out.String()
	if !strings.Contains(got, "error: unknown command") {
		t.Fatalf("missing error line:\n%s", got)
	}
	if strings.Count(got, "alice") != 1 {
		t.Fatalf("commands after quit should not run:\n%s", got)
	}
}

func TestInteractiveModel_Scrollback(t *testing.T) {
	_, sh := newTestShell(t)
	m := newInteractiveModel(context.Background(), sh)
	for range scrollback + 10 {
		m.push("line")
	}
	if len(m.lines) != scrollback {
		t.Fatalf("lines = %d, want %d", len(m.lines), scrollback)
	}
	m.Update(noticeMsg("end of track"))
	if !strings.Contains(m.lines[len(m.lines)-1], "end of track") {
		t.Fatalf("notice not shown: %q", m.lines[len(m.lines)-1])
	}
}
