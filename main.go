package main

import (
	"liveguard.io/infrastructure"
	"liveguard.io/infrastructure/env"
)

func init() {
	env.LoadEnv()
}

func main() {
	infrastructure.StartServer()
}
