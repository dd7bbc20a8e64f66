// vouchsafe — human confirmation gate for agent-proposed actions.
package main

import "github.com/mhalvorsen/vouchsafe/internal/cli"

func main() {
	cli.Execute()
}
