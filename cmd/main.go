// Package main provides the API to manage users, accounts, entries and money transfers.
package main

import (
	"github.com/go-petr/lifemanager/cmd/commands"

	_ "github.com/lib/pq"
)

func main() {
	commands.Execute()
}
