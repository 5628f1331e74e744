package workflow

import (
	"github.com/tidwall/gjson"

	"driver-companion/internal/jsonx"
)

func stringOr(def string, r gjson.Result, paths ...string) string {
	if s, ok := jsonx.String(r, paths...); ok {
		return s
	}
	return def
}

// idOf reads an identifier that may be a plain string or a populated document.
func idOf(v gjson.Result) (string, bool) {
	if v.IsObject() {
		return jsonx.String(v, "_id", "id", "productId")
	}
	return jsonx.AsString(v)
}

func firstID(r gjson.Result, paths ...string) (string, bool) {
	for _, p := range paths {
		if id, ok := idOf(r.Get(p)); ok {
			return id, true
		}
	}
	return "", false
}

// localizedText reads a title that may be a string or an object keyed by language.
func localizedText(v gjson.Result) (string, bool) {
	if !v.IsObject() {
		return jsonx.AsString(v)
	}
	if s, ok := jsonx.AsString(v.Get("en")); ok {
		return s, true
	}
	var out string
	v.ForEach(func(_, val gjson.Result) bool {
		if s, ok := jsonx.AsString(val); ok {
			out = s
			return false
		}
		return true
	})
	return out, out != ""
}

func firstLocalized(r gjson.Result, paths ...string) (string, bool) {
	for _, p := range paths {
		if s, ok := localizedText(r.Get(p)); ok {
			return s, true
		}
	}
	return "", false
}

// imageRefs collects image references from a string, an array of strings or {url} objects.
func imageRefs(v gjson.Result) []string {
	var out []string
	add := func(x gjson.Result) {
		if x.IsObject() {
			x = x.Get("url")
		}
		if s, ok := jsonx.AsString(x); ok {
			out = append(out, s)
		}
	}
	if v.IsArray() {
		for _, x := range v.Array() {
			add(x)
		}
		return out
	}
	add(v)
	return out
}
