// Package config loads and validates the genie-relay configuration.
//
// Configuration is YAML with ${VAR} environment expansion, so secrets like
// the backend token can stay out of the file. Genie host, token, and space id
// are required; everything else has defaults.
package config
