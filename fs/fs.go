// Package appfs embeds the assets shipped inside the binary: DB migrations and email templates.
package appfs

import "embed"

//go:embed migrations/*.sql templates/email/*
var FS embed.FS
