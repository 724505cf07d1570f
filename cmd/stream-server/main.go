// Package main is the stream-server entry point (HTTP + WebSocket).
package main

import (
	"log"

	"github.com/Rahul-J-IT/stream-app/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
