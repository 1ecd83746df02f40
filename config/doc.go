// Package config defines the engine's single configuration record:
// every tunable named in the spec's external-interfaces configuration
// surface, each with a defined default so a missing value never fails
// startup. Loading a record from YAML/env/flags is the HTTP/CLI
// collaborator's job, not this package's; config only defines the shape
// and its defaults.
package config
