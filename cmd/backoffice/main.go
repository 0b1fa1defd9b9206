// Command backoffice is the e-commerce back office CLI.
package main

import "github.com/user/backoffice/internal/cli"

func main() {
	cli.Execute()
}
