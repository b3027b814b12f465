package main

import (
	"github.com/eleven-am/streamplay/internal/bootstrap"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()
	bootstrap.Run()
}
