package domain

import "errors"

var ErrUnknownResource = errors.New("unknown resource kind")

type ResourceKind string

const (
	ResourceScreen ResourceKind = "screen"
	ResourceVideo  ResourceKind = "video"
	ResourceAudio  ResourceKind = "audio"
)

func ParseResourceKind(s string) (ResourceKind, error) {
	switch k := ResourceKind(s); k {
	case ResourceScreen, ResourceVideo, ResourceAudio:
		return k, nil
	}
	return "", ErrUnknownResource
}

// Resources are the feeds a connection declares.
type Resources struct {
	Screen bool `json:"screen"`
	Video  bool `json:"video"`
	Audio  bool `json:"audio"`
}

// DefaultResources is what every new connection starts with: camera on, mic and screen off.
func DefaultResources() Resources {
	return Resources{Video: true}
}
