package main

import "github.com/oshokin/msix-gen/cmd/msix-gen/cmd"

func main() {
	cmd.Execute()
}
