package blueprint

import _ "embed"

// Template is a starter blueprint document. The JSON metadata block must
// keep its "type" field; everything else is meant to be replaced.
//
//go:embed template.md
var Template string
