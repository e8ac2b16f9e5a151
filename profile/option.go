//go:build pprof

package profile

import "github.com/pkg/profile"

// option appends settings for [profile.Start].
type option func([]func(*profile.Profile)) []func(*profile.Profile)

func settings(opts ...option) []func(*profile.Profile) {
	var s []func(*profile.Profile)

	for _, opt := range opts {
		s = opt(s)
	}

	return s
}

func withMode(m string) option {
	return func(s []func(*profile.Profile)) []func(*profile.Profile) {
		if fn, ok := modes[m]; ok {
			return append(s, fn)
		}

		return s
	}
}

func withPath(p string) option {
	return func(s []func(*profile.Profile)) []func(*profile.Profile) {
		if p == "" {
			return s
		}

		return append(s, profile.ProfilePath(p))
	}
}

func withQuiet(q bool) option {
	return func(s []func(*profile.Profile)) []func(*profile.Profile) {
		if !q {
			return s
		}

		return append(s, profile.Quiet)
	}
}
