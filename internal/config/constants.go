package config

// Lua manifest globals and field names
const (
	luaGlobalIR    = "ir"
	luaFieldTools  = "tools"
	luaFieldURL    = "url"
	luaFieldName   = "name"
	luaFieldTag    = "tag"
	luaFieldHold   = "hold"
	luaFieldWords  = "words"
	luaFieldMethod = "method"
)

// Manifest limits
const (
	MaxToolCount = 500
	maxFieldLen  = 1024
)
