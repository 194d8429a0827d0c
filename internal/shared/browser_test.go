package shared

import (
	"slices"
	"testing"
)

func TestBrowserCommand(t *testing.T) {
	const url = "https://idp.example.com/auth?state=abc&code_challenge=xyz"

	tc := []struct {
		rt      string
		want    []string
		wantErr bool
	}{
		{rt: "darwin", want: []string{"open", url}},
		{rt: "linux", want: []string{"xdg-open", url}},
		{rt: "windows", want: []string{"rundll32", "url.dll,FileProtocolHandler", url}},
		{rt: "plan9", wantErr: true},
	}

	for _, tt := range tc {
		t.Run(tt.rt, func(t *testing.T) {
			got, err := browserCommand(tt.rt, url)
			if tt.wantErr {
				if err == nil {
					t.Errorf("expected error for %s", tt.rt)
				}
				return
			}
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if !slices.Equal(got, tt.want) {
				t.Errorf("browserCommand(%s) = %v, want %v", tt.rt, got, tt.want)
			}
		})
	}

	t.Run("OpenBrowser unsupported platform", func(t *testing.T) {
		orig := getRuntime
		defer func() { getRuntime = orig }()
		getRuntime = func() string { return "plan9" }

		if err := OpenBrowser(url); err == nil {
			t.Error("expected error for unsupported platform")
		}
	})
}
