package main

import (
	"mjjbox-checkin/cmd/checkin-cli/commands"
	"mjjbox-checkin/lib/serviceutil"
)

func main() {
	commands.ExecuteContext(serviceutil.SignalContext())
}
