// Package main provides the entry point for the hostguard CLI.
//
// Hostguard is a host protection agent that supervises a Tor anonymity
// relay, scans running processes for suspicious CPU activity, and routes
// text classification requests to a local inference endpoint.
//
// Usage:
//
//	hostguard run
//	hostguard run --cli
//	hostguard scan
//
// See --help for all available options.
package main

// main is the entry point for hostguard.
func main() {
	Execute()
}
