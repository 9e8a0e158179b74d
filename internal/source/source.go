package source

import (
	"fmt"
	"net/url"
	"strings"
)

// Kind selects how a video is acquired.
type Kind string

const (
	KindLocal   Kind = "local"
	KindRemote  Kind = "remote"
	KindYouTube Kind = "youtube"
)

// Kinds lists the acquisition kinds in CLI help order.
var Kinds = []Kind{KindLocal, KindRemote, KindYouTube}

// KindNames joins Kinds for help and error text: "local, remote, youtube".
func KindNames() string {
	names := make([]string, len(Kinds))
	for i, k := range Kinds {
		names[i] = string(k)
	}
	return strings.Join(names, ", ")
}

// VideoSource identifies where a run gets its video from.
type VideoSource struct {
	Kind  Kind   `json:"kind"`
	Value string `json:"value"`
}

func (s VideoSource) String() string {
	return fmt.Sprintf("%s:%s", s.Kind, s.Value)
}

func ParseKind(raw string) (Kind, error) {
	switch Kind(strings.ToLower(strings.TrimSpace(raw))) {
	case KindLocal:
		return KindLocal, nil
	case KindRemote, "url":
		return KindRemote, nil
	case KindYouTube, "yt":
		return KindYouTube, nil
	default:
		return "", fmt.Errorf("unknown source kind %q (want one of %s)", raw, KindNames())
	}
}

// New validates kind and value and returns the source.
func New(kind Kind, value string) (VideoSource, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return VideoSource{}, fmt.Errorf("source value is required")
	}
	switch kind {
	case KindLocal:
	case KindRemote, KindYouTube:
		u, err := url.Parse(value)
		if err != nil {
			return VideoSource{}, fmt.Errorf("invalid %s url %q: %w", kind, value, err)
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return VideoSource{}, fmt.Errorf("%s source must be an http(s) url, got %q", kind, value)
		}
	default:
		return VideoSource{}, fmt.Errorf("unknown source kind %q", kind)
	}
	return VideoSource{Kind: kind, Value: value}, nil
}

var youTubeHosts = map[string]bool{
	"youtube.com":       true,
	"www.youtube.com":   true,
	"m.youtube.com":     true,
	"music.youtube.com": true,
	"youtu.be":          true,
}

// Detect guesses the kind of value: YouTube hosts, any other http(s) url,
// otherwise a local path.
func Detect(value string) VideoSource {
	value = strings.TrimSpace(value)
	u, err := url.Parse(value)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return VideoSource{Kind: KindLocal, Value: value}
	}
	if youTubeHosts[strings.ToLower(u.Hostname())] {
		return VideoSource{Kind: KindYouTube, Value: value}
	}
	return VideoSource{Kind: KindRemote, Value: value}
}
