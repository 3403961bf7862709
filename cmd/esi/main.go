// Command esi is a CLI for the EVE Online ESI API.
package main

import "github.com/evetools/esi-cli/internal/cli"

func main() {
	cli.Execute()
}
