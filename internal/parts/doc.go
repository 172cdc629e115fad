// Package parts validates individual part definitions from a manifest's
// parts mapping against an embedded JSON Schema. Properties prefixed with the
// part's plugin name belong to the plugin and are not checked here.
package parts
