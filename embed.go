package folio

import "embed"

// EmbeddedAssets contains the static assets shipped with the binary:
// folio.css and live.js
//
//go:embed embedded/*
var EmbeddedAssets embed.FS
