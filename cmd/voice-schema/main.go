package main

import "github.com/aqasim81/voice-schema/internal/cli"

func main() {
	cli.Execute()
}
