// Package config provides configuration structures and utilities for hostguard.
// It defines the supervisor options (scan cadence, relay ports, classification
// backend) and their defaults, plus loading of the optional .hostguard file.
package config
