package main

import (
	"storysmith/cmd/handlers"
	"storysmith/internal/logger"
)

func main() {
	logger.Init() // Initialize the logger
	handlers.Execute()
}
