package main

import "github.com/oshokin/appimage-packager/cmd/appimage-packager/cmd"

func main() {
	cmd.Execute()
}
