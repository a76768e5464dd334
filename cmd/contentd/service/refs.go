package service

import (
	"github.com/tidwall/gjson"

	"github.com/pagehub/contentd/cmd/contentd/models"
)

// ExtractRefs pulls (kind, id) counter references out of a serialized
// payload. It accepts every shape the read path produces: a single page
// detail, a paginated list envelope, and cache entries wrapped under a
// data field. Items without a usable kind or id are ignored.
func ExtractRefs(payload []byte) []models.ContentReference {
	root := gjson.ParseBytes(payload)
	if data := root.Get("data"); data.Exists() {
		root = data
	}

	var refs []models.ContentReference
	collect := func(contents gjson.Result) {
		contents.ForEach(func(_, item gjson.Result) bool {
			if ref, ok := refFromItem(item); ok {
				refs = append(refs, ref)
			}
			return true
		})
	}

	if results := root.Get("results"); results.Exists() {
		results.ForEach(func(_, page gjson.Result) bool {
			collect(page.Get("contents"))
			return true
		})
	} else if contents := root.Get("contents"); contents.Exists() {
		collect(contents)
	}

	return refs
}

// FlattenRefs normalizes a reference payload of any nesting depth (a
// single reference object, a flat list, or lists of lists) into a flat
// reference sequence.
func FlattenRefs(raw []byte) []models.ContentReference {
	var refs []models.ContentReference

	var walk func(v gjson.Result)
	walk = func(v gjson.Result) {
		if v.IsArray() {
			v.ForEach(func(_, elem gjson.Result) bool {
				walk(elem)
				return true
			})
			return
		}
		if ref, ok := refFromItem(v); ok {
			refs = append(refs, ref)
		}
	}

	walk(gjson.ParseBytes(raw))
	return refs
}

func refFromItem(item gjson.Result) (models.ContentReference, bool) {
	if !item.IsObject() {
		return models.ContentReference{}, false
	}

	kind, err := models.ParseContentKind(item.Get("content_type").String())
	if err != nil {
		return models.ContentReference{}, false
	}

	id := item.Get("id").Int()
	if id <= 0 {
		return models.ContentReference{}, false
	}

	return models.ContentReference{Kind: kind, ID: id}, true
}
