package main

import (
	"github.com/frahmantamala/crm-management/cmd"
)

func main() {
	cmd.Execute()
}
