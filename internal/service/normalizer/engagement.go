package normalizer

import (
	"github.com/kapu/viralscope-go/internal/util"
	"github.com/tidwall/gjson"
)

type postSample struct {
	posts    int64
	likes    int64
	comments int64
}

// collectSample reads the first sample source that holds at least one post
// with a like count. Posts whose like count is missing or negative (hidden)
// are skipped. The summed likes cover the sample only, not the account
// lifetime.
func collectSample(items []gjson.Result, sources []sampleSource) (postSample, bool) {
	for _, src := range sources {
		var posts []gjson.Result
		if src.array == "" {
			posts = items
		} else {
			posts = nestedArray(items[0], src.array)
		}

		var s postSample
		for _, post := range posts {
			like, ok := lookup(post, src.likes)
			if !ok || like.Float() < 0 {
				continue
			}
			s.posts++
			s.likes = addCount(s.likes, toCount(like))
			if comment, ok := lookup(post, src.comments); ok {
				s.comments = addCount(s.comments, toCount(comment))
			}
		}
		if s.posts > 0 {
			return s, true
		}
	}
	return postSample{}, false
}

// nestedArray looks for path on the item and on its common profile wrappers.
func nestedArray(item gjson.Result, path string) []gjson.Result {
	for _, prefix := range []string{"", "graphql.user.", "data.user.", "user."} {
		if r := item.Get(prefix + path); r.IsArray() {
			return r.Array()
		}
	}
	return nil
}

// sampleEngagement is the average likes plus comments per sampled post over
// followers, in percent.
func sampleEngagement(s postSample, followers int64) float64 {
	if followers <= 0 || s.posts == 0 {
		return 0
	}
	avg := (float64(s.likes) + float64(s.comments)) / float64(s.posts)
	return util.Round2(avg / float64(followers) * 100)
}

// aggregateEngagement is total likes (or views) over followers, in percent.
func aggregateEngagement(total, followers int64) float64 {
	if followers <= 0 {
		return 0
	}
	return util.Round2(float64(total) / float64(followers) * 100)
}
