// Package source resolves a URI or file path into a typed source
// configuration for the playback engine.
package source

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// Type identifies how the engine should open a source.
type Type int

const (
	// TypeProgressive is the default: a plain media file fetched or
	// read front to back.
	TypeProgressive Type = iota
	// TypeDASH is a DASH manifest (.mpd).
	TypeDASH
	// TypeHLS is a segmented HLS playlist (.m3u8).
	TypeHLS
	// TypeSmoothStreaming is a smooth-streaming manifest (.ism/.isml).
	TypeSmoothStreaming
	// TypeRawResource is a bundled resource addressed as res:/<id>.
	TypeRawResource
)

// String returns the type name.
func (t Type) String() string {
	switch t {
	case TypeProgressive:
		return "progressive"
	case TypeDASH:
		return "dash"
	case TypeHLS:
		return "hls"
	case TypeSmoothStreaming:
		return "smoothstreaming"
	case TypeRawResource:
		return "rawresource"
	default:
		return "unknown"
	}
}

// RawResourceScheme addresses resources bundled with the host.
const RawResourceScheme = "res"

// Config describes a resolved media source.
type Config struct {
	Type Type
	URI  string

	// RawResourceID is set only for TypeRawResource.
	RawResourceID int
}

// Resolve parses uriOrPath and infers the source type from its suffix.
// Plain file paths resolve like file URIs.
func Resolve(uriOrPath string) (Config, error) {
	u, err := url.Parse(uriOrPath)
	if err != nil {
		return Config{}, fmt.Errorf("parse source %q: %w", uriOrPath, err)
	}

	if u.Scheme == RawResourceScheme {
		// res:/####### - the path is /#######, the id is the path
		// minus the leading slash.
		id, err := strconv.Atoi(strings.TrimPrefix(u.Path, "/"))
		if err != nil {
			return Config{}, fmt.Errorf("invalid raw resource id in %q: %w", uriOrPath, err)
		}
		return Config{Type: TypeRawResource, URI: uriOrPath, RawResourceID: id}, nil
	}

	path := u.Path
	if path == "" {
		// Opaque URIs and bare relative paths have no url path
		// component; infer from the whole string.
		path = uriOrPath
	}
	return Config{Type: inferType(path), URI: uriOrPath}, nil
}

// inferType maps a path suffix to a source type. Anything unrecognized
// is treated as progressive and left to the engine's own sniffing.
func inferType(path string) Type {
	p := strings.ToLower(path)
	switch {
	case strings.HasSuffix(p, ".mpd"):
		return TypeDASH
	case strings.HasSuffix(p, ".m3u8"):
		return TypeHLS
	case strings.HasSuffix(p, ".ism"), strings.HasSuffix(p, ".isml"),
		strings.HasSuffix(p, ".ism/manifest"), strings.HasSuffix(p, ".isml/manifest"):
		return TypeSmoothStreaming
	default:
		return TypeProgressive
	}
}
