package config

import (
	"bytes"
	"sort"
	"strings"
	"time"

	"github.com/install-release/ir/internal/state"
)

// Generator writes a Lua manifest describing installed tools, the inverse
// of Parser.
type Generator struct {
	indent string
	now    func() time.Time
}

// NewGenerator returns a generator using two-space indentation.
func NewGenerator() *Generator {
	return &Generator{indent: "  ", now: time.Now}
}

// Generate renders doc as a manifest. Entries are sorted by key so output
// is stable across runs.
func (g *Generator) Generate(doc state.Document) string {
	keys := make([]string, 0, len(doc))
	for k := range doc {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var buf bytes.Buffer
	buf.WriteString("-- install-release manifest\n")
	buf.WriteString("-- Generated: ")
	buf.WriteString(g.now().UTC().Format(time.RFC3339))
	buf.WriteString("\n\n")
	buf.WriteString(luaGlobalIR + " = {\n")
	buf.WriteString(g.indent + luaFieldTools + " = {\n")

	for _, k := range keys {
		g.writeTool(&buf, doc[k])
	}

	buf.WriteString(g.indent + "},\n")
	buf.WriteString("}\n")
	return buf.String()
}

func (g *Generator) writeTool(buf *bytes.Buffer, rec state.ToolRecord) {
	pad := strings.Repeat(g.indent, 3)

	buf.WriteString(strings.Repeat(g.indent, 2) + "{\n")
	g.field(buf, pad, luaFieldURL, quoteLuaString(rec.URL))
	g.field(buf, pad, luaFieldName, quoteLuaString(rec.Name))
	if rec.TagName != "" {
		g.field(buf, pad, luaFieldTag, quoteLuaString(rec.TagName))
	}
	if rec.HoldUpdate {
		g.field(buf, pad, luaFieldHold, "true")
	}
	if rec.Method() == state.MethodPackage {
		g.field(buf, pad, luaFieldMethod, quoteLuaString(string(state.MethodPackage)))
	}
	if len(rec.CustomReleaseWords) > 0 {
		quoted := make([]string, len(rec.CustomReleaseWords))
		for i, w := range rec.CustomReleaseWords {
			quoted[i] = quoteLuaString(w)
		}
		g.field(buf, pad, luaFieldWords, "{ "+strings.Join(quoted, ", ")+" }")
	}
	buf.WriteString(strings.Repeat(g.indent, 2) + "},\n")
}

func (g *Generator) field(buf *bytes.Buffer, pad, name, value string) {
	buf.WriteString(pad)
	buf.WriteString(name)
	buf.WriteString(" = ")
	buf.WriteString(value)
	buf.WriteString(",\n")
}

// quoteLuaString quotes a string for Lua, handling special characters.
func quoteLuaString(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\") // backslashes first
	s = strings.ReplaceAll(s, "\"", "\\\"")
	s = strings.ReplaceAll(s, "\n", "\\n")
	s = strings.ReplaceAll(s, "\r", "\\r")
	s = strings.ReplaceAll(s, "\t", "\\t")
	return "\"" + s + "\""
}
