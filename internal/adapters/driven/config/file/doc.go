// Package file provides file-based implementations of driven port interfaces.
//
// Adapters:
//   - ConfigStore: TOML configuration at ~/.qagent/config.toml
//   - PromptStore: user-editable prompt templates at ~/.qagent/prompts/
package file
