package main

import (
	_ "embed"

	"github.com/dsh2dsh/cafef/cmd"
	"github.com/dsh2dsh/cafef/cmd/db"
)

//go:embed db/schema.sql
var schemaSQL string

var version = "dev"

func init() {
	db.SchemaSQL = schemaSQL
}

func main() {
	cmd.Execute(version)
}
