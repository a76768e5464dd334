package models

import (
	"encoding/json"
	"fmt"
	"sort"
)

// ContentKind discriminates the media content variants
type ContentKind string

const (
	KindVideo ContentKind = "video"
	KindAudio ContentKind = "audio"
)

// ParseContentKind validates a kind string
func ParseContentKind(s string) (ContentKind, error) {
	switch ContentKind(s) {
	case KindVideo:
		return KindVideo, nil
	case KindAudio:
		return KindAudio, nil
	}
	return "", fmt.Errorf("unknown content kind: %q", s)
}

// ContentReference identifies one media item for counter updates
type ContentReference struct {
	Kind ContentKind `json:"content_type"`
	ID   int64       `json:"id"`
}

// ContentMeta holds the fields shared by every media content variant
type ContentMeta struct {
	ID          int64       `json:"id"`
	Title       string      `json:"title"`
	Counter     int64       `json:"counter"`
	Order       int64       `json:"order"`
	ContentType ContentKind `json:"content_type"`
	IsActive    bool        `json:"is_active"`
}

// Ref returns the counter-update reference for this item
func (m *ContentMeta) Ref() ContentReference {
	return ContentReference{Kind: m.ContentType, ID: m.ID}
}

// ContentItem is the tagged union over video and audio content.
// The content_type field is the discriminant.
type ContentItem interface {
	Meta() *ContentMeta
	Kind() ContentKind
}

// VideoItem is the video variant of a page's media content
type VideoItem struct {
	ContentMeta
	VideoPath    *string `json:"video_path"`
	VideoURL     *string `json:"video_url"`
	SubtitlesURL *string `json:"subtitles_url"`
}

func (v *VideoItem) Meta() *ContentMeta { return &v.ContentMeta }
func (v *VideoItem) Kind() ContentKind  { return KindVideo }

// AudioItem is the audio variant of a page's media content
type AudioItem struct {
	ContentMeta
	AudioPath *string `json:"audio_path"`
	AudioURL  *string `json:"audio_url"`
}

func (a *AudioItem) Meta() *ContentMeta { return &a.ContentMeta }
func (a *AudioItem) Kind() ContentKind  { return KindAudio }

// ContentList is an ordered list of media content items
type ContentList []ContentItem

// UnmarshalJSON dispatches each element to the variant named by its
// content_type discriminant
func (l *ContentList) UnmarshalJSON(data []byte) error {
	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		return err
	}

	items := make(ContentList, 0, len(raws))
	for _, raw := range raws {
		var probe struct {
			ContentType ContentKind `json:"content_type"`
		}
		if err := json.Unmarshal(raw, &probe); err != nil {
			return err
		}

		switch probe.ContentType {
		case KindVideo:
			var v VideoItem
			if err := json.Unmarshal(raw, &v); err != nil {
				return err
			}
			items = append(items, &v)
		case KindAudio:
			var a AudioItem
			if err := json.Unmarshal(raw, &a); err != nil {
				return err
			}
			items = append(items, &a)
		default:
			return fmt.Errorf("unknown content kind: %q", probe.ContentType)
		}
	}

	*l = items
	return nil
}

// Sort orders the list by (order, counter) ascending
func (l ContentList) Sort() {
	sort.SliceStable(l, func(i, j int) bool {
		mi, mj := l[i].Meta(), l[j].Meta()
		if mi.Order != mj.Order {
			return mi.Order < mj.Order
		}
		return mi.Counter < mj.Counter
	})
}

// Refs returns counter-update references for every item
func (l ContentList) Refs() []ContentReference {
	refs := make([]ContentReference, 0, len(l))
	for _, item := range l {
		refs = append(refs, item.Meta().Ref())
	}
	return refs
}
