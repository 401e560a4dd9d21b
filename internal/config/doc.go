// Package config resolves ir's filesystem locations, loads user settings,
// and parses declarative Lua tool manifests.
//
// Settings live in config.json and can be overridden from the environment.
// Manifests run in a sandboxed gopher-lua VM with a read-only platform
// table, so one file can describe tools for several machines.
package config
