// Command navctl builds reports, seeds sample data and migrates the database.
package main

import "business-navigator/internal/cli"

// version is set at build time via ldflags:
//
//	go build -ldflags "-X main.version=1.0.0"
var version = "dev"

func main() {
	cli.SetVersion(version)
	cli.Execute()
}
