// Package pkg holds module metadata and per-user file locations.
package pkg

import (
	_ "embed"
	"strings"
)

//go:embed VERSION
var version string

// Version is the semantic version of the module, embedded at build time.
var Version = strings.TrimSpace(version)

const (
	// Name is the command name. It also names the per-user config and cache
	// directories when the executable name cannot be used.
	Name = "molang"
	// Description is the one-line summary shown in help output.
	Description = "Embeddable Molang expression engine"
)

// AuthorInfo identifies a project author.
type AuthorInfo struct {
	Name  string
	Email string
}

// Author lists the primary author(s) of the project.
var Author = []AuthorInfo{
	{"ardnew", "andrew@ardnew.com"},
}
