package resource

import "github.com/wippyai/libspot/native"

// Kind identifies a native resource type.
type Kind uint8

const (
	KindSession Kind = iota
	KindTrack
	KindAlbum
	KindArtist
	KindImage
	KindLink
	KindPlaylist
	KindPlaylistContainer
	KindSearch
	KindUser
	KindToplist
)

var kindNames = [...]string{
	KindSession:           "session",
	KindTrack:             "track",
	KindAlbum:             "album",
	KindArtist:            "artist",
	KindImage:             "image",
	KindLink:              "link",
	KindPlaylist:          "playlist",
	KindPlaylistContainer: "playlist_container",
	KindSearch:            "search",
	KindUser:              "user",
	KindToplist:           "toplist",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// Event types for resource lifecycle notifications.
type EventType uint8

const (
	EventCreated EventType = iota
	EventShared
	EventDropped
)

func (t EventType) String() string {
	switch t {
	case EventCreated:
		return "created"
	case EventShared:
		return "shared"
	case EventDropped:
		return "dropped"
	default:
		return "unknown"
	}
}

// Event represents a resource lifecycle event.
type Event struct {
	Value  any
	Handle native.Handle
	Kind   Kind
	Type   EventType
}

// Observer receives notifications about resource lifecycle events.
type Observer interface {
	OnResourceEvent(Event)
}

// Disposer is implemented by every wrapper.
type Disposer interface {
	Dispose() error
}
