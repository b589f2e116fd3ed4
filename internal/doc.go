// Package internal contains the core application machinery: the App
// lifecycle, chi router adaptation, the request Context, structured
// HTTP errors, lazy request body parsing, the session manager, and the
// server runtime. The public API is exposed through the root restkit
// package via type aliases.
package internal
