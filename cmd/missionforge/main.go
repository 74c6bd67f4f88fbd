// Command missionforge compiles multi-robot mission artifacts into valid
// mission decompositions.
package main

import "github.com/jvillaverde/missionforge/cmd"

func main() {
	cmd.Execute()
}
