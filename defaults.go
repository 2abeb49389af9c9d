package buildutils

import _ "embed"

// DefaultConfig is the baseline tools.yaml every tool starts from.
//
//go:embed defaults/tools.yaml
var DefaultConfig []byte
