// Package render turns normalized answer payloads into channel-specific
// output: a flat markdown-style string for plain-text channels, and a
// Block-Kit-style block sequence for channels with rich layout support.
//
// Both renderers are pure functions over answer.Payload. Payloads with an
// unrecognized shape render as a fixed placeholder, never as an error.
package render
