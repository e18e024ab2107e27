package domain

import "golang.org/x/exp/slices"

// Playlist is the ordered sequence of videos with a single current pointer.
// Videos are ordered by id ascending. The pointer is mutated only through
// the SetCurrent*/Clear/Next/Prev methods, each of which fires the
// registered hooks exactly once per actual change. Setting the pointer to
// its present value is a no-op.
type Playlist struct {
	videos           []*Video
	current          int // index into videos, -1 when nothing is selected
	onCurrentChanged []func(current *Video)
}

func NewPlaylist(videos ...*Video) *Playlist {
	p := Playlist{current: -1}
	p.Reset(videos)

	return &p
}

// OnCurrentChanged registers a hook fired whenever the current video
// actually changes. The hook receives nil when the selection is cleared.
// Hooks run in registration order.
func (p *Playlist) OnCurrentChanged(fn func(current *Video)) {
	p.onCurrentChanged = append(p.onCurrentChanged, fn)
}

func (p *Playlist) Length() int {
	return len(p.videos)
}

func (p *Playlist) Videos() []*Video {
	videos := make([]*Video, len(p.videos))
	copy(videos, p.videos)
	return videos
}

func (p *Playlist) GetById(id int) (*Video, bool) {
	for _, video := range p.videos {
		if video.Id == id {
			return video, true
		}
	}

	return nil, false
}

// Current returns the current video, or nil when nothing is selected.
func (p *Playlist) Current() *Video {
	if p.current < 0 {
		return nil
	}

	return p.videos[p.current]
}

// CurrentIndex returns the index of the current video, -1 when nothing is
// selected.
func (p *Playlist) CurrentIndex() int {
	return p.current
}

// Reset replaces the playlist contents. The first video becomes current
// when the new contents are non-empty, otherwise the selection is cleared.
func (p *Playlist) Reset(videos []*Video) {
	old := p.Current()

	p.videos = make([]*Video, 0, len(videos))
	for _, video := range videos {
		if video != nil {
			p.videos = append(p.videos, video)
		}
	}
	slices.SortFunc(p.videos, func(a, b *Video) int {
		return a.Id - b.Id
	})

	if len(p.videos) > 0 {
		p.current = 0
	} else {
		p.current = -1
	}

	if p.Current() != old {
		p.fireCurrentChanged()
	}
}

// SetCurrentIndex selects the video at the given position. Out-of-range
// indexes clamp to the nearest valid position. No-op on an empty playlist.
func (p *Playlist) SetCurrentIndex(index int) {
	if len(p.videos) == 0 {
		return
	}

	if index < 0 {
		index = 0
	}
	if index >= len(p.videos) {
		index = len(p.videos) - 1
	}

	if index == p.current {
		return
	}

	p.current = index
	p.fireCurrentChanged()
}

// SetCurrentVideo selects the given video. Videos not contained in the
// playlist are ignored.
func (p *Playlist) SetCurrentVideo(video *Video) {
	for index, candidate := range p.videos {
		if candidate == video {
			p.SetCurrentIndex(index)
			return
		}
	}
}

// ClearCurrent stops the selection.
func (p *Playlist) ClearCurrent() {
	if p.current == -1 {
		return
	}

	p.current = -1
	p.fireCurrentChanged()
}

// Next advances the selection, wrapping around at the end. With no current
// selection the first video becomes current.
func (p *Playlist) Next() {
	if len(p.videos) == 0 {
		return
	}

	if p.current == -1 {
		p.SetCurrentIndex(0)
		return
	}

	p.setCurrentWrapped((p.current + 1) % len(p.videos))
}

// Prev moves the selection back, wrapping around at the start. With no
// current selection the last video becomes current.
func (p *Playlist) Prev() {
	if len(p.videos) == 0 {
		return
	}

	if p.current == -1 {
		p.SetCurrentIndex(len(p.videos) - 1)
		return
	}

	index := p.current - 1
	if index < 0 {
		index = len(p.videos) - 1
	}
	p.setCurrentWrapped(index)
}

// setCurrentWrapped bypasses clamping: wrap-around targets are always valid
// indexes, but may equal the current one on single-video playlists.
func (p *Playlist) setCurrentWrapped(index int) {
	if index == p.current {
		return
	}

	p.current = index
	p.fireCurrentChanged()
}

func (p *Playlist) fireCurrentChanged() {
	current := p.Current()
	for _, fn := range p.onCurrentChanged {
		fn(current)
	}
}
