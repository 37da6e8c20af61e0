package domain

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/kapu/viralscope-go/pkg/errors"
)

// Platform identifies a supported social network.
type Platform string

const (
	PlatformInstagram Platform = "instagram"
	PlatformTikTok    Platform = "tiktok"
	PlatformYouTube   Platform = "youtube"
	PlatformKwai      Platform = "kwai"
)

// Platforms lists every supported platform in display order.
var Platforms = []Platform{PlatformInstagram, PlatformTikTok, PlatformYouTube, PlatformKwai}

var platformAliases = map[string]Platform{
	"instagram": PlatformInstagram,
	"ig":        PlatformInstagram,
	"insta":     PlatformInstagram,
	"tiktok":    PlatformTikTok,
	"tt":        PlatformTikTok,
	"youtube":   PlatformYouTube,
	"yt":        PlatformYouTube,
	"kwai":      PlatformKwai,
}

func (p Platform) String() string {
	return string(p)
}

func (p Platform) Valid() bool {
	switch p {
	case PlatformInstagram, PlatformTikTok, PlatformYouTube, PlatformKwai:
		return true
	}
	return false
}

// ParsePlatform accepts a platform key or shorthand, case-insensitively.
func ParsePlatform(s string) (Platform, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	if key == "" {
		return "", errors.NewValidationError("platform is required", "platform", s)
	}
	if p, ok := platformAliases[key]; ok {
		return p, nil
	}
	return "", errors.NewValidationError(fmt.Sprintf("unsupported platform %q", s), "platform", s)
}

// ExtractHandle pulls the account handle (or channel id) out of a profile URL
// or a bare handle. The leading @ is dropped.
func ExtractHandle(platform Platform, urlOrHandle string) (string, error) {
	raw := strings.TrimSpace(urlOrHandle)
	if raw == "" {
		return "", errors.NewValidationError("profile URL or handle is required", "profileUrl", urlOrHandle)
	}

	if !looksLikeURL(raw) {
		handle := strings.TrimPrefix(strings.Trim(raw, "/"), "@")
		if handle == "" || strings.ContainsAny(handle, " /?#") {
			return "", errors.NewValidationError("invalid handle", "profileUrl", urlOrHandle)
		}
		return handle, nil
	}

	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", errors.NewValidationError("invalid profile URL", "profileUrl", urlOrHandle)
	}

	segments := splitPath(u.Path)
	if len(segments) == 0 {
		return "", errors.NewValidationError("profile URL has no handle", "profileUrl", urlOrHandle)
	}

	first := segments[0]
	switch platform {
	case PlatformYouTube:
		switch first {
		case "channel", "c", "user":
			if len(segments) < 2 {
				return "", errors.NewValidationError("profile URL has no handle", "profileUrl", urlOrHandle)
			}
			return segments[1], nil
		}
	case PlatformKwai:
		if first == "u" && len(segments) > 1 {
			return strings.TrimPrefix(segments[1], "@"), nil
		}
	}

	handle := strings.TrimPrefix(first, "@")
	if handle == "" {
		return "", errors.NewValidationError("profile URL has no handle", "profileUrl", urlOrHandle)
	}
	return handle, nil
}

// ProfileURL builds the public profile address for a handle.
func ProfileURL(platform Platform, handle string) string {
	if handle == "" {
		return ""
	}
	switch platform {
	case PlatformInstagram:
		return "https://www.instagram.com/" + handle + "/"
	case PlatformTikTok:
		return "https://www.tiktok.com/@" + handle
	case PlatformYouTube:
		if strings.HasPrefix(handle, "UC") && len(handle) == 24 {
			return "https://www.youtube.com/channel/" + handle
		}
		return "https://www.youtube.com/@" + handle
	case PlatformKwai:
		return "https://www.kwai.com/@" + handle
	}
	return ""
}

func looksLikeURL(s string) bool {
	lower := strings.ToLower(s)
	if strings.Contains(lower, "://") {
		return true
	}
	for _, host := range []string{"instagram.com", "tiktok.com", "youtube.com", "youtu.be", "kwai.com"} {
		if strings.Contains(lower, host) {
			return true
		}
	}
	return false
}

func splitPath(p string) []string {
	parts := strings.Split(p, "/")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
