// Package logging builds the zerolog loggers used by the CLI. Library
// packages take a zerolog.Logger through their options and stay silent by
// default.
package logging
