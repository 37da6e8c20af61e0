// Package normalizer maps provider payloads of every supported platform onto
// domain.CanonicalProfile. It is pure: no I/O, no logging.
package normalizer

import (
	"bytes"
	"time"

	"github.com/kapu/viralscope-go/internal/domain"
	"github.com/kapu/viralscope-go/internal/util"
	"github.com/kapu/viralscope-go/pkg/errors"
	"github.com/tidwall/gjson"
)

// Normalize converts raw into a CanonicalProfile stamped with the current time.
// It returns nil, nil for an empty payload (absent, null or an empty list).
func Normalize(platform domain.Platform, raw []byte) (*domain.CanonicalProfile, error) {
	return NormalizeAt(platform, raw, time.Now().UTC())
}

// NormalizeAt is Normalize with an explicit SyncedAt.
func NormalizeAt(platform domain.Platform, raw []byte, now time.Time) (*domain.CanonicalProfile, error) {
	if !platform.Valid() {
		return nil, errors.NewValidationError("unsupported platform", "platform", string(platform))
	}

	items, err := decodeItems(raw)
	if err != nil || len(items) == 0 {
		return nil, err
	}

	first := items[0]
	if first.Get("isSynthetic").Bool() {
		p := fromSynthetic(platform, first)
		p.SyncedAt = now
		return p, nil
	}

	p := fromFields(platform, fieldMaps[platform], items)
	p.SyncedAt = now
	return p, nil
}

// decodeItems accepts a bare array, a single object, or an {items:[...]}
// envelope.
func decodeItems(raw []byte) ([]gjson.Result, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, nil
	}
	if !gjson.ValidBytes(trimmed) {
		return nil, errors.NewMalformedResponseError("provider payload is not valid JSON", "normalizer",
			util.TruncateString(string(trimmed), 120))
	}

	parsed := gjson.ParseBytes(trimmed)
	if parsed.IsObject() {
		if env := parsed.Get("items"); env.IsArray() {
			parsed = env
		}
	}

	var items []gjson.Result
	switch {
	case parsed.IsArray():
		for _, item := range parsed.Array() {
			if item.IsObject() {
				items = append(items, item)
			}
		}
	case parsed.IsObject():
		items = []gjson.Result{parsed}
	case parsed.Type == gjson.Null:
		return nil, nil
	default:
		return nil, errors.NewMalformedResponseError("provider payload is neither an object nor a list", "normalizer",
			util.TruncateString(parsed.Raw, 120))
	}
	return items, nil
}

func fromFields(platform domain.Platform, fm fieldMap, items []gjson.Result) *domain.CanonicalProfile {
	objs := roots(items[0], fm.roots)

	p := &domain.CanonicalProfile{
		Platform:    platform,
		Handle:      cleanHandle(firstString(objs, fm.handle)),
		DisplayName: firstString(objs, fm.displayName),
		Bio:         firstString(objs, fm.bio),
		AvatarURL:   firstString(objs, fm.avatar),
		ProfileURL:  firstString(objs, fm.url),
		Followers:   firstCount(objs, fm.followers),
		Following:   firstCount(objs, fm.following),
		Posts:       firstCount(objs, fm.posts),
		IsVerified:  anyTrue(objs, fm.verified),
		IsPrivate:   anyTrue(objs, fm.private),
	}
	if p.ProfileURL == "" {
		p.ProfileURL = domain.ProfileURL(platform, p.Handle)
	}

	if sample, ok := collectSample(items, fm.samples); ok {
		p.Likes = sample.likes
		p.EngagementRatePercent = sampleEngagement(sample, p.Followers)
		return p
	}

	p.Likes = firstCount(objs, fm.likes)
	base := p.Likes
	if base == 0 {
		base = firstCount(objs, fm.views)
	}
	p.EngagementRatePercent = aggregateEngagement(base, p.Followers)
	return p
}

func fromSynthetic(platform domain.Platform, item gjson.Result) *domain.CanonicalProfile {
	p := &domain.CanonicalProfile{
		Platform:              platform,
		Handle:                cleanHandle(item.Get("handle").String()),
		DisplayName:           item.Get("displayName").String(),
		Bio:                   item.Get("bio").String(),
		AvatarURL:             item.Get("avatarUrl").String(),
		ProfileURL:            item.Get("profileUrl").String(),
		Followers:             toCount(item.Get("followers")),
		Following:             toCount(item.Get("following")),
		Posts:                 toCount(item.Get("posts")),
		Likes:                 toCount(item.Get("likes")),
		EngagementRatePercent: item.Get("engagementRatePercent").Float(),
		IsVerified:            item.Get("isVerified").Bool(),
		IsPrivate:             item.Get("isPrivate").Bool(),
		IsSynthetic:           true,
	}
	if p.EngagementRatePercent < 0 || p.Followers == 0 {
		p.EngagementRatePercent = 0
	}
	if p.ProfileURL == "" {
		p.ProfileURL = domain.ProfileURL(platform, p.Handle)
	}
	return p
}
