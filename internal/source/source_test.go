package source

import "testing"

func TestResolve_InfersType(t *testing.T) {
	tests := []struct {
		uri  string
		want Type
	}{
		{"http://cdn.example.com/stream.mpd", TypeDASH},
		{"https://cdn.example.com/live/master.m3u8", TypeHLS},
		{"http://cdn.example.com/video.ism", TypeSmoothStreaming},
		{"http://cdn.example.com/video.isml", TypeSmoothStreaming},
		{"http://cdn.example.com/video.ism/manifest", TypeSmoothStreaming},
		{"http://cdn.example.com/video.isml/manifest", TypeSmoothStreaming},
		{"file:///movies/a.mp4", TypeProgressive},
		{"/home/user/music/track.mp3", TypeProgressive},
		{"relative/clip.webm", TypeProgressive},
		{"http://cdn.example.com/clip", TypeProgressive},
		// Suffix match is case-insensitive.
		{"http://cdn.example.com/STREAM.MPD", TypeDASH},
		{"http://cdn.example.com/Master.M3U8", TypeHLS},
		// Query strings do not confuse the suffix match.
		{"http://cdn.example.com/stream.mpd?token=abc", TypeDASH},
	}
	for _, tt := range tests {
		cfg, err := Resolve(tt.uri)
		if err != nil {
			t.Errorf("Resolve(%q) error: %v", tt.uri, err)
			continue
		}
		if cfg.Type != tt.want {
			t.Errorf("Resolve(%q).Type = %v, want %v", tt.uri, cfg.Type, tt.want)
		}
		if cfg.URI != tt.uri {
			t.Errorf("Resolve(%q).URI = %q, want original", tt.uri, cfg.URI)
		}
	}
}

func TestResolve_RawResource(t *testing.T) {
	cfg, err := Resolve("res:/4217")
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}
	if cfg.Type != TypeRawResource {
		t.Errorf("Type = %v, want TypeRawResource", cfg.Type)
	}
	if cfg.RawResourceID != 4217 {
		t.Errorf("RawResourceID = %d, want 4217", cfg.RawResourceID)
	}
}

func TestResolve_RawResourceBadID(t *testing.T) {
	if _, err := Resolve("res:/notanumber"); err == nil {
		t.Error("Resolve() should fail for a non-numeric resource id")
	}
}

func TestResolve_UnparsableURI(t *testing.T) {
	if _, err := Resolve("http://[::1"); err == nil {
		t.Error("Resolve() should fail for an unparsable URI")
	}
}

func TestType_String(t *testing.T) {
	tests := []struct {
		typ  Type
		want string
	}{
		{TypeProgressive, "progressive"},
		{TypeDASH, "dash"},
		{TypeHLS, "hls"},
		{TypeSmoothStreaming, "smoothstreaming"},
		{TypeRawResource, "rawresource"},
		{Type(99), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.typ.String(); got != tt.want {
			t.Errorf("%d.String() = %q, want %q", tt.typ, got, tt.want)
		}
	}
}
