package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContentList_UnmarshalDispatchesOnKind(t *testing.T) {
	payload := []byte(`[
		{"id": 1, "title": "Clip", "counter": 2, "order": 1, "content_type": "video",
		 "is_active": true, "video_path": "2025/07/12/video/clip.mp4",
		 "video_url": null, "subtitles_url": null},
		{"id": 2, "title": "Track", "counter": 0, "order": 2, "content_type": "audio",
		 "is_active": false, "audio_path": null,
		 "audio_url": "https://cdn-example.com/track.mp3"}
	]`)

	var list ContentList
	require.NoError(t, json.Unmarshal(payload, &list))
	require.Len(t, list, 2)

	video, ok := list[0].(*VideoItem)
	require.True(t, ok)
	require.NotNil(t, video.VideoPath)
	assert.Equal(t, "2025/07/12/video/clip.mp4", *video.VideoPath)
	assert.Equal(t, KindVideo, video.Kind())

	audio, ok := list[1].(*AudioItem)
	require.True(t, ok)
	require.NotNil(t, audio.AudioURL)
	assert.Nil(t, audio.AudioPath)
	assert.Equal(t, KindAudio, audio.Kind())
}

func TestContentList_UnmarshalRejectsUnknownKind(t *testing.T) {
	payload := []byte(`[{"id": 1, "content_type": "image"}]`)

	var list ContentList
	assert.Error(t, json.Unmarshal(payload, &list))
}

func TestContentList_RoundTrip(t *testing.T) {
	path := "2025/07/12/audio/a.mp3"
	original := ContentList{
		&AudioItem{
			ContentMeta: ContentMeta{ID: 5, Title: "Track", Counter: 7, Order: 1, ContentType: KindAudio, IsActive: true},
			AudioPath:   &path,
		},
	}

	data, err := json.Marshal(original)
	require.NoError(t, err)

	var decoded ContentList
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.Len(t, decoded, 1)
	assert.Equal(t, original[0], decoded[0])
}

func TestContentList_SortByOrderThenCounter(t *testing.T) {
	list := ContentList{
		&VideoItem{ContentMeta: ContentMeta{ID: 1, Order: 3, Counter: 0, ContentType: KindVideo}},
		&AudioItem{ContentMeta: ContentMeta{ID: 2, Order: 1, Counter: 5, ContentType: KindAudio}},
		&VideoItem{ContentMeta: ContentMeta{ID: 3, Order: 1, Counter: 2, ContentType: KindVideo}},
	}

	list.Sort()

	assert.Equal(t, int64(3), list[0].Meta().ID)
	assert.Equal(t, int64(2), list[1].Meta().ID)
	assert.Equal(t, int64(1), list[2].Meta().ID)
}

func TestParseContentKind(t *testing.T) {
	kind, err := ParseContentKind("video")
	require.NoError(t, err)
	assert.Equal(t, KindVideo, kind)

	_, err = ParseContentKind("image")
	assert.Error(t, err)

	_, err = ParseContentKind("")
	assert.Error(t, err)
}

func TestPageDetail_Validate(t *testing.T) {
	page := &PageDetail{
		Title: "Valid Title",
		URL:   "https://pages-example.com/valid-page/",
	}
	assert.NoError(t, page.Validate())

	page.Title = "lowercase is rejected"
	page.URL = "ftp://pages-example.com/valid-page/"
	err := page.Validate()

	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Contains(t, validationErr.Fields, "title")
	assert.Contains(t, validationErr.Fields, "url")
}
