// Package scaffold writes a starter manifest from an embedded template. It
// backs the "craftapp init" command, which is offered whenever a command
// cannot find a manifest file.
package scaffold
