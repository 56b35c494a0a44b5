// Command cachemap simulates cache address mapping policies.
package main

import "github.com/sarchlab/cachemap/cmd"

func main() {
	cmd.Execute()
}
