// Command pagepulse audits web pages and tracks their Core Web Vitals.
package main

import (
	"fmt"
	"os"

	"github.com/huangsam/pagepulse/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "❌", err)
		os.Exit(1)
	}
}
