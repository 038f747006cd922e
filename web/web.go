// Package web embeds the HTML templates and static assets served by the storefront.
package web

import "embed"

// Templates holds layout.html and one page template per route.
//
//go:embed templates/*.html
var Templates embed.FS

// Static holds assets served under /static/.
//
//go:embed static
var Static embed.FS
