// Command triggerlog is a personal journal for emotional triggers.
package main

import "github.com/mesh-intelligence/triggerlog/internal/cli"

func main() {
	cli.Execute()
}
