package database

import _ "embed"

// Schema is the full current schema as one SQL script. Tests apply it
// directly to in-memory databases instead of running migrations.
//
//go:embed migrations/files/0001_init.up.sql
var Schema string
