package web

import "embed"

// StaticFS holds the embedded static assets (stylesheet, activity listener).
//
//go:embed static/*
var StaticFS embed.FS
