package main

import (
	"vse-client/cmd/vse-cli/commands"
	"vse-client/internal/components/serviceutil"
)

func main() {
	commands.ExecuteContext(serviceutil.SignalContext())
}
