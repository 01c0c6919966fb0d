// SPDX-License-Identifier: MPL-2.0

package main

import cmd "github.com/termemu/termemu/cmd/termemu"

func main() {
	cmd.Execute()
}
