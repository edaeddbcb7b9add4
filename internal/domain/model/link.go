package model

import "strings"

// LinkDomain identifies which external resolver a submitted link belongs to.
type LinkDomain string

const (
	DomainYouTube   LinkDomain = "youtube"
	DomainInstagram LinkDomain = "instagram"
)

// Callback data prefixes for variant-selection buttons. The prefix encodes
// the domain so a stale callback can be matched against the stored session.
const (
	CallbackPrefixYouTube   = "yt:"
	CallbackPrefixInstagram = "ig:"
)

// AudioVariant is the variant key used for the audio track of any domain.
const AudioVariant = "audio"

// ClassifyLink inspects free-form text and reports the link domain it
// belongs to. YouTube markers win over Instagram when both are present.
func ClassifyLink(text string) (LinkDomain, bool) {
	switch {
	case strings.Contains(text, "youtu.be"), strings.Contains(text, "youtube.com"):
		return DomainYouTube, true
	case strings.Contains(text, "instagram.com"):
		return DomainInstagram, true
	default:
		return "", false
	}
}

// CallbackPrefix returns the callback-data prefix for the domain.
func (d LinkDomain) CallbackPrefix() string {
	if d == DomainInstagram {
		return CallbackPrefixInstagram
	}
	return CallbackPrefixYouTube
}

// ResolvedLink is the immutable snapshot of what a resolver returned for
// one link: named video variants plus an optional audio track. It is
// read-only once stored in a session.
type ResolvedLink struct {
	Variants map[string]string // quality -> direct URL
	Audio    string
}

// Variant looks up a direct URL by variant key. The audio track is
// addressed by the AudioVariant key.
func (r *ResolvedLink) Variant(key string) (string, bool) {
	if key == AudioVariant {
		if r.Audio == "" {
			return "", false
		}
		return r.Audio, true
	}
	url, ok := r.Variants[key]
	if ok && url == "" {
		return "", false
	}
	return url, ok
}
