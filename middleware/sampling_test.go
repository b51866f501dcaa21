package middleware

import "testing"

func TestSampleRateBounds(t *testing.T) {
	always := SampleRate(1)
	never := SampleRate(0)
	for i := 0; i < 100; i++ {
		if !always(nil) {
			t.Fatalf("rate 1 must keep every request")
		}
		if never(nil) {
			t.Fatalf("rate 0 must drop every request")
		}
	}
	if !SampleRate(2)(nil) || SampleRate(-1)(nil) {
		t.Fatalf("out of range rates must clamp")
	}
}

func TestSampleRateKeepsSome(t *testing.T) {
	sample := SampleRate(0.5)
	kept := 0
	for i := 0; i < 1000; i++ {
		if sample(nil) {
			kept++
		}
	}
	if kept == 0 || kept == 1000 {
		t.Fatalf("expected a partial sample, kept %d of 1000", kept)
	}
}

func TestShouldSkipPath(t *testing.T) {
	patterns := []string{"/health", " /static/* ", "*", ""}
	cases := map[string]bool{
		"/health":        true,
		"/health/deep":   false,
		"/static/app.js": true,
		"/static":        false,
		"/jokes":         false,
	}
	for path, want := range cases {
		if got := shouldSkipPath(path, patterns); got != want {
			t.Fatalf("shouldSkipPath(%q) = %v, want %v", path, got, want)
		}
	}
}
