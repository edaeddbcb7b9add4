//go:build !integration

package model_test

import (
	"errors"
	"testing"

	"telegram-media-relay/internal/domain"
	"telegram-media-relay/internal/domain/model"
)

func TestClassifyLink(t *testing.T) {
	testCases := []struct {
		name       string
		text       string
		wantDomain model.LinkDomain
		wantOK     bool
	}{
		{name: "short youtube link", text: "https://youtu.be/abc", wantDomain: model.DomainYouTube, wantOK: true},
		{name: "full youtube link", text: "check https://www.youtube.com/watch?v=abc", wantDomain: model.DomainYouTube, wantOK: true},
		{name: "instagram reel", text: "https://instagram.com/reel/xyz", wantDomain: model.DomainInstagram, wantOK: true},
		{name: "instagram with www", text: "https://www.instagram.com/p/xyz", wantDomain: model.DomainInstagram, wantOK: true},
		{name: "youtube wins when both present", text: "youtube.com and instagram.com", wantDomain: model.DomainYouTube, wantOK: true},
		{name: "plain text", text: "hello there", wantOK: false},
		{name: "empty", text: "", wantOK: false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := model.ClassifyLink(tc.text)
			if ok != tc.wantOK {
				t.Fatalf("ClassifyLink(%q) ok = %v, want %v", tc.text, ok, tc.wantOK)
			}
			if ok && got != tc.wantDomain {
				t.Errorf("ClassifyLink(%q) = %q, want %q", tc.text, got, tc.wantDomain)
			}
		})
	}
}

func TestLinkDomainCallbackPrefix(t *testing.T) {
	if got := model.DomainYouTube.CallbackPrefix(); got != "yt:" {
		t.Errorf("youtube prefix = %q", got)
	}
	if got := model.DomainInstagram.CallbackPrefix(); got != "ig:" {
		t.Errorf("instagram prefix = %q", got)
	}
}

func TestResolvedLinkVariant(t *testing.T) {
	link := model.ResolvedLink{
		Variants: map[string]string{"720p": "https://cdn.example/720", "360p": ""},
		Audio:    "https://cdn.example/audio",
	}

	t.Run("present variant", func(t *testing.T) {
		url, ok := link.Variant("720p")
		if !ok || url != "https://cdn.example/720" {
			t.Errorf("Variant(720p) = %q, %v", url, ok)
		}
	})

	t.Run("empty URL counts as absent", func(t *testing.T) {
		if _, ok := link.Variant("360p"); ok {
			t.Error("expected empty URL to be unavailable")
		}
	})

	t.Run("missing key", func(t *testing.T) {
		if _, ok := link.Variant("1080p"); ok {
			t.Error("expected missing variant to be unavailable")
		}
	})

	t.Run("audio key reads the audio track", func(t *testing.T) {
		url, ok := link.Variant(model.AudioVariant)
		if !ok || url != "https://cdn.example/audio" {
			t.Errorf("Variant(audio) = %q, %v", url, ok)
		}
	})

	t.Run("missing audio track", func(t *testing.T) {
		noAudio := model.ResolvedLink{Variants: map[string]string{"720p": "x"}}
		if _, ok := noAudio.Variant(model.AudioVariant); ok {
			t.Error("expected absent audio to be unavailable")
		}
	})
}

func TestSessionConstructors(t *testing.T) {
	t.Run("broadcast session starts awaiting content", func(t *testing.T) {
		sess := model.NewBroadcastSession()
		if sess.Flow != model.FlowBroadcastContent {
			t.Errorf("unexpected flow: %q", sess.Flow)
		}
		if sess.Broadcast == nil || sess.Link != nil {
			t.Errorf("broadcast session must carry only the broadcast payload: %+v", sess)
		}
		if sess.UpdatedAt.IsZero() {
			t.Error("UpdatedAt must be set")
		}
	})

	t.Run("link session starts pending", func(t *testing.T) {
		sess := model.NewLinkSession(model.DomainYouTube, model.ResolvedLink{Audio: "a"})
		if sess.Flow != model.FlowLinkPending {
			t.Errorf("unexpected flow: %q", sess.Flow)
		}
		if sess.Link == nil || sess.Broadcast != nil {
			t.Errorf("link session must carry only the link payload: %+v", sess)
		}
		if sess.Link.Domain != model.DomainYouTube || sess.Link.Resolved.Audio != "a" {
			t.Errorf("unexpected link payload: %+v", sess.Link)
		}
	})
}

func TestSessionClone(t *testing.T) {
	t.Run("nil receiver", func(t *testing.T) {
		var s *model.Session
		if s.Clone() != nil {
			t.Error("nil session must clone to nil")
		}
	})

	t.Run("variants map does not alias", func(t *testing.T) {
		orig := model.NewLinkSession(model.DomainYouTube, model.ResolvedLink{
			Variants: map[string]string{"720p": "https://cdn.example/720"},
		})
		cp := orig.Clone()

		cp.Link.Resolved.Variants["720p"] = "mutated"
		if orig.Link.Resolved.Variants["720p"] != "https://cdn.example/720" {
			t.Error("clone aliases the original variants map")
		}
	})

	t.Run("broadcast payload does not alias", func(t *testing.T) {
		orig := model.NewBroadcastSession()
		orig.Broadcast.Content = model.BroadcastContent{Kind: model.ContentText, Body: "Hello"}
		cp := orig.Clone()

		cp.Broadcast.Content.Body = "mutated"
		if orig.Broadcast.Content.Body != "Hello" {
			t.Error("clone aliases the original broadcast draft")
		}
	})
}

func TestNewRecipient(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		rcpt, err := model.NewRecipient(1001, "alice")
		if err != nil {
			t.Fatalf("NewRecipient returned error: %v", err)
		}
		if rcpt.ChatID != 1001 || rcpt.Username != "alice" {
			t.Errorf("unexpected recipient: %+v", rcpt)
		}
		if rcpt.ID == "" || rcpt.FirstSeenAt.IsZero() || rcpt.LastSeenAt.IsZero() {
			t.Errorf("identity fields not initialized: %+v", rcpt)
		}
	})

	t.Run("zero chat id rejected", func(t *testing.T) {
		if _, err := model.NewRecipient(0, "x"); !errors.Is(err, domain.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})
}

func TestNewDeliveryReport(t *testing.T) {
	report := model.NewDeliveryReport()
	if report.StartedAt.IsZero() {
		t.Error("StartedAt must be set")
	}
	if report.Delivered != 0 || report.Attempted != 0 || len(report.Failures) != 0 {
		t.Errorf("new report must be empty: %+v", report)
	}
}
