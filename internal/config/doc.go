// Package config manages user-level settings stored at ~/.craftapp/config.yaml.
// Each key can also be set through a CRAFTAPP_ environment variable, which
// takes precedence over the file.
package config
