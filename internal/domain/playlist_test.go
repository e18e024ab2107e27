package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testVideos(ids ...int) []*Video {
	videos := make([]*Video, 0, len(ids))
	for _, id := range ids {
		videos = append(videos, &Video{Id: id, Name: "video"})
	}
	return videos
}

func TestPlaylistResetSortsAndSelectsFirst(t *testing.T) {
	p := NewPlaylist(testVideos(3, 1, 2)...)

	require.Equal(t, 3, p.Length())
	assert.Equal(t, 0, p.CurrentIndex())
	assert.Equal(t, 1, p.Current().Id)

	videos := p.Videos()
	assert.Equal(t, 1, videos[0].Id)
	assert.Equal(t, 2, videos[1].Id)
	assert.Equal(t, 3, videos[2].Id)
}

func TestPlaylistEmpty(t *testing.T) {
	p := NewPlaylist()

	assert.Zero(t, p.Length())
	assert.Nil(t, p.Current())
	assert.Equal(t, -1, p.CurrentIndex())

	// every mutation is a no-op on an empty playlist
	p.SetCurrentIndex(0)
	p.Next()
	p.Prev()
	assert.Equal(t, -1, p.CurrentIndex())
}

func TestPlaylistSetCurrentIndexClamps(t *testing.T) {
	p := NewPlaylist(testVideos(1, 2, 3)...)

	p.SetCurrentIndex(99)
	assert.Equal(t, 2, p.CurrentIndex())

	p.SetCurrentIndex(-7)
	assert.Equal(t, 0, p.CurrentIndex())
}

func TestPlaylistFiresOnActualChangeOnly(t *testing.T) {
	p := NewPlaylist(testVideos(1, 2, 3)...)

	var changes []*Video
	p.OnCurrentChanged(func(current *Video) {
		changes = append(changes, current)
	})

	p.SetCurrentIndex(1)
	p.SetCurrentIndex(1) // same index, no hook
	p.SetCurrentIndex(99)
	p.SetCurrentIndex(5) // clamps to the already-current index, no hook

	require.Len(t, changes, 2)
	assert.Equal(t, 2, changes[0].Id)
	assert.Equal(t, 3, changes[1].Id)

	p.ClearCurrent()
	require.Len(t, changes, 3)
	assert.Nil(t, changes[2])

	p.ClearCurrent() // already cleared
	assert.Len(t, changes, 3)
}

func TestPlaylistNextPrevWrap(t *testing.T) {
	p := NewPlaylist(testVideos(1, 2, 3)...)

	p.Next()
	assert.Equal(t, 1, p.CurrentIndex())
	p.Next()
	p.Next()
	assert.Equal(t, 0, p.CurrentIndex(), "next wraps to the start")

	p.Prev()
	assert.Equal(t, 2, p.CurrentIndex(), "prev wraps to the end")
}

func TestPlaylistNextPrevFromCleared(t *testing.T) {
	p := NewPlaylist(testVideos(1, 2, 3)...)

	p.ClearCurrent()
	p.Next()
	assert.Equal(t, 0, p.CurrentIndex())

	p.ClearCurrent()
	p.Prev()
	assert.Equal(t, 2, p.CurrentIndex())
}

func TestPlaylistSetCurrentVideo(t *testing.T) {
	videos := testVideos(1, 2, 3)
	p := NewPlaylist(videos...)

	p.SetCurrentVideo(videos[2])
	assert.Equal(t, 3, p.Current().Id)

	// a video outside the playlist is ignored, even with a known id
	p.SetCurrentVideo(&Video{Id: 1, Name: "imposter"})
	assert.Equal(t, 3, p.Current().Id)
}

func TestPlaylistResetReplacesContents(t *testing.T) {
	p := NewPlaylist(testVideos(1, 2)...)
	p.SetCurrentIndex(1)

	var fired int
	p.OnCurrentChanged(func(_ *Video) {
		fired++
	})

	p.Reset(testVideos(5, 4))
	assert.Equal(t, 4, p.Current().Id)
	assert.Equal(t, 1, fired)

	p.Reset(nil)
	assert.Nil(t, p.Current())
	assert.Equal(t, 2, fired)
}

func TestPlaylistGetById(t *testing.T) {
	p := NewPlaylist(testVideos(1, 2)...)

	video, ok := p.GetById(2)
	require.True(t, ok)
	assert.Equal(t, 2, video.Id)

	_, ok = p.GetById(9)
	assert.False(t, ok)
}
