package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	lua "github.com/yuin/gopher-lua"
)

// Load reads and parses a registry.lua build configuration from disk.
func Load(path string) (*Build, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read build config: %w", err)
	}
	return ParseString(string(data))
}

// ParseString parses a Lua build config from a string.
// This is useful for testing and in-memory config generation.
func ParseString(luaCode string) (*Build, error) {
	L := newSandboxedVM()
	defer L.Close()

	if err := L.DoString(luaCode); err != nil {
		return nil, &ParseError{
			Message: "Lua syntax error",
			Detail:  err.Error(),
		}
	}

	return extractBuild(L)
}

// ParseError represents a config parsing error with a friendly message.
type ParseError struct {
	Message string // User-friendly message
	Detail  string // Technical details (raw Lua error)
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: %s", e.Message, e.Detail)
}

// extractBuild extracts the build config from a Lua state.
// It expects a global "registry" table with the config structure.
func extractBuild(L *lua.LState) (*Build, error) {
	regVal := L.GetGlobal("registry")
	if regVal.Type() != lua.LTTable {
		return nil, &ParseError{
			Message: "missing or invalid 'registry' table",
			Detail:  fmt.Sprintf("expected table, got %s", regVal.Type()),
		}
	}
	table := regVal.(*lua.LTable)

	build := &Build{}

	if v := table.RawGetString("organization"); v.Type() == lua.LTString {
		build.Organization = v.String()
	}
	if v := table.RawGetString("topic"); v.Type() == lua.LTString {
		build.Topic = v.String()
	}
	if v := table.RawGetString("official_repo"); v.Type() == lua.LTString {
		build.OfficialRepo = v.String()
	}
	if v := table.RawGetString("hero"); v.Type() == lua.LTString {
		build.Hero = v.String()
	}

	if v := table.RawGetString("official"); v.Type() == lua.LTTable {
		build.Official = extractOfficial(v.(*lua.LTable))
	}
	if v := table.RawGetString("categories"); v.Type() == lua.LTTable {
		build.Categories = extractCategories(v.(*lua.LTable))
	}
	if v := table.RawGetString("limits"); v.Type() == lua.LTTable {
		build.Limits = extractLimits(v.(*lua.LTable))
	}
	build.Limits.applyDefaults()

	if err := build.Validate(); err != nil {
		return nil, &ParseError{
			Message: "config validation failed",
			Detail:  err.Error(),
		}
	}

	return build, nil
}

// extractOfficial extracts the official template array from a Lua table.
// Nil and non-table entries are skipped; validation catches empty names.
func extractOfficial(table *lua.LTable) []OfficialTemplate {
	var official []OfficialTemplate

	table.ForEach(func(key, value lua.LValue) {
		if value.Type() != lua.LTTable {
			return
		}
		entry := value.(*lua.LTable)
		t := OfficialTemplate{}
		if v := entry.RawGetString("name"); v.Type() == lua.LTString {
			t.Name = v.String()
		}
		if v := entry.RawGetString("cmd_path"); v.Type() == lua.LTString {
			t.CmdPath = v.String()
		}
		official = append(official, t)
	})

	return official
}

// extractCategories extracts the category label map from a Lua table.
func extractCategories(table *lua.LTable) map[string]CategoryLabel {
	categories := make(map[string]CategoryLabel)

	table.ForEach(func(key, value lua.LValue) {
		if key.Type() != lua.LTString || value.Type() != lua.LTTable {
			return
		}
		labels := value.(*lua.LTable)
		label := CategoryLabel{}
		if v := labels.RawGetString("zh"); v.Type() == lua.LTString {
			label.ZH = v.String()
		}
		if v := labels.RawGetString("en"); v.Type() == lua.LTString {
			label.EN = v.String()
		}
		categories[key.String()] = label
	})

	return categories
}

// extractLimits extracts execution limits from a Lua table.
// Timeouts are given in seconds, sizes in bytes.
func extractLimits(table *lua.LTable) Limits {
	limits := Limits{}

	if v := table.RawGetString("exec_timeout"); v.Type() == lua.LTNumber {
		limits.ExecTimeout = time.Duration(lua.LVAsNumber(v)) * time.Second
	}
	if v := table.RawGetString("render_timeout"); v.Type() == lua.LTNumber {
		limits.RenderTimeout = time.Duration(lua.LVAsNumber(v)) * time.Second
	}
	if v := table.RawGetString("manifest_max"); v.Type() == lua.LTNumber {
		limits.ManifestMax = int64(lua.LVAsNumber(v))
	}
	if v := table.RawGetString("example_max"); v.Type() == lua.LTNumber {
		limits.ExampleMax = int64(lua.LVAsNumber(v))
	}
	if v := table.RawGetString("typst_max"); v.Type() == lua.LTNumber {
		limits.TypstMax = int64(lua.LVAsNumber(v))
	}
	if v := table.RawGetString("render_max"); v.Type() == lua.LTNumber {
		limits.RenderMax = int64(lua.LVAsNumber(v))
	}

	return limits
}

// FormatError formats a ParseError for user display.
// In verbose mode, show the raw Lua error. Otherwise, show friendly message.
func FormatError(err error, verbose bool) string {
	if parseErr, ok := err.(*ParseError); ok {
		if verbose {
			return fmt.Sprintf("%s\n\nDetails:\n%s", parseErr.Message, parseErr.Detail)
		}
		detail := parseErr.Detail
		if idx := strings.Index(detail, "stack traceback"); idx > 0 {
			detail = strings.TrimSpace(detail[:idx])
		}
		return fmt.Sprintf("%s: %s", parseErr.Message, detail)
	}
	return err.Error()
}
