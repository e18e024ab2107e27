package domain

import (
	"errors"
	"fmt"
	"regexp"
)

var (
	ErrInvalidVideo  = errors.New("invalid video")
	ErrVideoNotFound = errors.New("video not found")
)

// Source keys carry the MIME type of the file behind the URL.
var videoSourceKeyRe = regexp.MustCompile(`^video/[A-Za-z0-9]+$`)

// Video is an immutable-after-validation record of a playable video: the
// descriptive fields shown in the feed, a poster image used before playback
// starts, a set of sources keyed by video MIME type, and the outfit worn in
// the video.
type Video struct {
	Id          int               `json:"id" validate:"gte=0"`
	Name        string            `json:"name" validate:"required"`
	Description string            `json:"description" validate:"required"`
	Poster      string            `json:"poster" validate:"required"`
	Sources     map[string]string `json:"sources" validate:"required"`
	Outfit      *Outfit           `json:"outfit" validate:"required"`
}

type NewVideoParams struct {
	Id          int
	Name        string
	Description string
	Poster      string
	Sources     map[string]string
	Outfit      *Outfit
}

func NewVideo(params *NewVideoParams) (*Video, error) {
	video := Video{
		Id:          params.Id,
		Name:        params.Name,
		Description: params.Description,
		Poster:      params.Poster,
		Sources:     params.Sources,
		Outfit:      params.Outfit,
	}

	if errs, ok := validate.Validate(&video); !ok {
		return nil, fmt.Errorf("%w: %s", ErrInvalidVideo, errs[0].Message)
	}

	for key, url := range video.Sources {
		if !videoSourceKeyRe.MatchString(key) {
			return nil, fmt.Errorf("%w: source key %q is not a video MIME type", ErrInvalidVideo, key)
		}
		if url == "" {
			return nil, fmt.Errorf("%w: source %q has no url", ErrInvalidVideo, key)
		}
	}

	return &video, nil
}
