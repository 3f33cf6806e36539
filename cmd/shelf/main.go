package main

import "github.com/MrSnakeDoc/shelf/internal/cli"

func main() {
	cli.Execute()
}
