// Package docs bundles the method reference shown by "rnm methods".
package docs

import "embed"

// FS contains long-form Markdown docs bundled with the rnm binary.
//
//go:embed methods.md
var FS embed.FS

// MethodsFile is the reference document inside FS.
const MethodsFile = "methods.md"
