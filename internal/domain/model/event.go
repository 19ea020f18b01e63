package model

// EventKind is the class of an inbound update.
type EventKind string

const (
	KindCommand EventKind = "command"
	KindPhoto   EventKind = "photo"
	KindText    EventKind = "text"
)

// Event is one inbound Telegram update after classification.
// It is implemented only by CommandEvent, PhotoEvent and TextEvent.
type Event interface {
	Kind() EventKind
	Chat() int64
	Update() int

	isEvent()
}

// CommandEvent is a bot command such as /start. Name carries no leading
// slash and no @botname suffix.
type CommandEvent struct {
	UpdateID int
	ChatID   int64
	Name     string
	Args     string
}

// PhotoEvent is a message with a photo attachment; Photo is the largest
// resolution variant of that attachment.
type PhotoEvent struct {
	UpdateID  int
	ChatID    int64
	MessageID int
	Photo     PhotoRef
}

// TextEvent is a plain text message that is not a command.
type TextEvent struct {
	UpdateID int
	ChatID   int64
	Text     string
}

// PhotoRef points to a remote file held by Telegram.
type PhotoRef struct {
	FileID       string
	FileUniqueID string
	Width        int
	Height       int
	FileSize     int
}

// Area is the pixel count of the variant.
func (p PhotoRef) Area() int { return p.Width * p.Height }

func (CommandEvent) Kind() EventKind { return KindCommand }
func (PhotoEvent) Kind() EventKind   { return KindPhoto }
func (TextEvent) Kind() EventKind    { return KindText }

func (e CommandEvent) Chat() int64 { return e.ChatID }
func (e PhotoEvent) Chat() int64   { return e.ChatID }
func (e TextEvent) Chat() int64    { return e.ChatID }

func (e CommandEvent) Update() int { return e.UpdateID }
func (e PhotoEvent) Update() int   { return e.UpdateID }
func (e TextEvent) Update() int    { return e.UpdateID }

func (CommandEvent) isEvent() {}
func (PhotoEvent) isEvent()   {}
func (TextEvent) isEvent()    {}

// LargestPhoto returns the variant with the biggest pixel area. Ties go to
// the bigger file, then to the later variant. ok is false for an empty slice.
func LargestPhoto(variants []PhotoRef) (best PhotoRef, ok bool) {
	for i, v := range variants {
		if i == 0 {
			best, ok = v, true
			continue
		}
		switch {
		case v.Area() > best.Area():
			best = v
		case v.Area() == best.Area() && v.FileSize >= best.FileSize:
			best = v
		}
	}
	return best, ok
}
