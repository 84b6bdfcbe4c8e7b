// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// Services are pure Go with no CGO. Only SettingsService reads the
// environment; every other service receives its settings explicitly.
package services
