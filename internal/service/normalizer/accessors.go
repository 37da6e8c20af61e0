package normalizer

import (
	"strings"

	"github.com/tidwall/gjson"
)

// roots resolves the profile-object locations of one payload item in
// priority order. An empty path is the item itself.
func roots(item gjson.Result, paths []string) []gjson.Result {
	out := make([]gjson.Result, 0, len(paths))
	for _, p := range paths {
		if p == "" {
			out = append(out, item)
			continue
		}
		if r := item.Get(p); r.IsObject() {
			out = append(out, r)
		}
	}
	return out
}

func firstString(objs []gjson.Result, aliases []string) string {
	for _, obj := range objs {
		for _, alias := range aliases {
			if v := toText(obj.Get(alias)); v != "" {
				return v
			}
		}
	}
	return ""
}

// firstCount returns the first candidate above zero.
func firstCount(objs []gjson.Result, aliases []string) int64 {
	for _, obj := range objs {
		for _, alias := range aliases {
			if v := toCount(obj.Get(alias)); v > 0 {
				return v
			}
		}
	}
	return 0
}

func anyTrue(objs []gjson.Result, aliases []string) bool {
	for _, obj := range objs {
		for _, alias := range aliases {
			if obj.Get(alias).Bool() {
				return true
			}
		}
	}
	return false
}

// lookup returns the first alias that exists on obj.
func lookup(obj gjson.Result, aliases []string) (gjson.Result, bool) {
	for _, alias := range aliases {
		if r := obj.Get(alias); r.Exists() && r.Type != gjson.Null {
			return r, true
		}
	}
	return gjson.Result{}, false
}

func cleanHandle(h string) string {
	return strings.TrimPrefix(strings.TrimSpace(h), "@")
}
