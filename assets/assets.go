// Package assets embeds resources shipped with the binary.
package assets

import _ "embed"

// DefaultInstruction is the agent's built-in instruction document. It can be
// overridden at runtime with INSTRUCTION_FILE.
//
//go:embed instruction.md
var DefaultInstruction string
