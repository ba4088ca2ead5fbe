// @title Agentspace Chat API
// @version 1.0
// @description Conversation session manager for the Agentspace chat client.
// @BasePath /api/v1
package main

import (
	"os"

	"github.com/Sankalp-SISL/agentspace/internal/app"
)

func main() {
	os.Exit(app.Run())
}
