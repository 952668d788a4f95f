package docket

import _ "embed"

// defaultStylesheet is served at /public/docket.css unless the static
// directory carries its own copy.
//
//go:embed embedded/docket.css
var defaultStylesheet []byte
