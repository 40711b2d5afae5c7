package main

import "github.com/frahmantamala/crm-assistant/cmd"

func main() {
	cmd.Execute()
}
