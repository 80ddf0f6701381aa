// SPDX-License-Identifier: MPL-2.0

// Command autosubmit submits annotated assignment files to a grading service.
package main

import cmd "github.com/autosubmit/autosubmit/cmd/autosubmit"

func main() {
	cmd.Execute()
}
