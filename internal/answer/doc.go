// Package answer defines the normalized result payload produced by the
// conversation orchestrator and consumed by the renderers, along with the
// canonical scalar formatting rules shared by all output formats.
package answer
