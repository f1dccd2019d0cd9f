package client

import "testing"

func TestObjectKey(t *testing.T) {
	cases := []struct {
		kind, userID, generationID, ext string
		want                            string
	}{
		{"audio", "user-1", "gen-1", "wav", "audio/user-1/gen-1.wav"},
		{"video", "user-1", "gen-1", "mp4", "video/user-1/gen-1.mp4"},
	}
	for _, tc := range cases {
		if got := ObjectKey(tc.kind, tc.userID, tc.generationID, tc.ext); got != tc.want {
			t.Errorf("ObjectKey(%s, %s, %s, %s) = %q, want %q",
				tc.kind, tc.userID, tc.generationID, tc.ext, got, tc.want)
		}
	}
}

func TestGetPublicURL(t *testing.T) {
	withCDN := &R2Client{bucketName: "devotional", publicURL: "https://cdn.example.com"}
	if got := withCDN.GetPublicURL("audio/u/g.wav"); got != "https://cdn.example.com/audio/u/g.wav" {
		t.Errorf("GetPublicURL with CDN = %q", got)
	}

	noCDN := &R2Client{bucketName: "devotional"}
	if got := noCDN.GetPublicURL("audio/u/g.wav"); got != "https://devotional.r2.cloudflarestorage.com/audio/u/g.wav" {
		t.Errorf("GetPublicURL without CDN = %q", got)
	}
}
