package model

import "time"

// FlowKind discriminates which multi-step flow a session belongs to.
type FlowKind string

const (
	FlowNone             FlowKind = ""
	FlowBroadcastContent FlowKind = "broadcast_awaiting_content"
	FlowBroadcastButton  FlowKind = "broadcast_awaiting_button"
	FlowLinkPending      FlowKind = "link_pending"
)

// ContentKind tags the payload of a broadcast draft.
type ContentKind string

const (
	ContentText  ContentKind = "text"
	ContentPhoto ContentKind = "photo"
	ContentVideo ContentKind = "video"
)

// BroadcastContent is the finalized payload of a broadcast: exactly one of
// the three kinds, decided when the operator submits it.
type BroadcastContent struct {
	Kind    ContentKind
	Body    string // text body, ContentText only
	FileID  string // Telegram file id, photo/video only
	Caption string // optional, photo/video only
}

// InlineButton is the single optional URL button attached to a broadcast.
type InlineButton struct {
	Label string
	URL   string
}

// BroadcastDraft carries the operator's in-progress broadcast composition.
type BroadcastDraft struct {
	Content BroadcastContent
}

// LinkSelection carries a resolved link awaiting (possibly repeated)
// variant selection.
type LinkSelection struct {
	Domain   LinkDomain
	Resolved ResolvedLink
}

// Session is the per-chat record of progress through a flow. It is a
// discriminated union on Flow: Broadcast is set for the two broadcast
// states, Link for FlowLinkPending, never both.
type Session struct {
	Flow      FlowKind
	Broadcast *BroadcastDraft
	Link      *LinkSelection
	UpdatedAt time.Time
}

// NewBroadcastSession starts the operator's composition flow.
func NewBroadcastSession() *Session {
	return &Session{
		Flow:      FlowBroadcastContent,
		Broadcast: &BroadcastDraft{},
		UpdatedAt: time.Now(),
	}
}

// NewLinkSession stores a freshly resolved link. It supersedes whatever
// session the chat had before.
func NewLinkSession(domain LinkDomain, resolved ResolvedLink) *Session {
	return &Session{
		Flow:      FlowLinkPending,
		Link:      &LinkSelection{Domain: domain, Resolved: resolved},
		UpdatedAt: time.Now(),
	}
}

// Touch bumps the session's activity timestamp.
func (s *Session) Touch() { s.UpdatedAt = time.Now() }

// Clone returns a deep copy so repository callers never alias stored state.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	cp := *s
	if s.Broadcast != nil {
		b := *s.Broadcast
		cp.Broadcast = &b
	}
	if s.Link != nil {
		l := *s.Link
		if s.Link.Resolved.Variants != nil {
			l.Resolved.Variants = make(map[string]string, len(s.Link.Resolved.Variants))
			for k, v := range s.Link.Resolved.Variants {
				l.Resolved.Variants[k] = v
			}
		}
		cp.Link = &l
	}
	return &cp
}
