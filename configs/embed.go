// Package configs provides the embedded configuration template for
// docindex.
//
// The template is embedded at build time with go:embed so it ships in
// every distribution. `docindex config init` writes it to the working
// directory as docindex.yaml.
package configs

import _ "embed"

// ConfigTemplate is the annotated docindex.yaml template.
//
//go:embed docindex.example.yaml
var ConfigTemplate string
