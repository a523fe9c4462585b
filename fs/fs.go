package appfs

import "embed"

// FS holds the SQL migrations and the email templates.
// Email layouts start with "_", hence the explicit pattern.
//go:embed migrations templates/email/*
var FS embed.FS
