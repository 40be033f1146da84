package scaffold

import "embed"

//go:embed templates/header.sh.tmpl
var templates embed.FS

const headerTemplate = "templates/header.sh.tmpl"
