package manifest

import (
	"errors"
	"testing"
)

const validManifest = `{
	"name": "gongwen",
	"displayName": "公文模板",
	"description": "Chinese official document template",
	"version": "1.2.0",
	"author": "Presto-io",
	"license": "MIT",
	"category": "gongwen",
	"keywords": ["official", "document"],
	"minPrestoVersion": "0.3.0",
	"fonts": ["Noto Serif CJK SC"],
	"fields": {"title": {"type": "string"}}
}`

func TestParse(t *testing.T) {
	m, err := Parse([]byte(validManifest))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if m.Name != "gongwen" {
		t.Errorf("Name = %q", m.Name)
	}
	if m.DisplayName != "公文模板" {
		t.Errorf("DisplayName = %q", m.DisplayName)
	}
	if m.Version != "1.2.0" {
		t.Errorf("Version = %q", m.Version)
	}
	if len(m.Keywords) != 2 {
		t.Errorf("Keywords = %v", m.Keywords)
	}
	if len(m.Fields) == 0 {
		t.Error("Fields not preserved")
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{
			name: "not json",
			data: `this is not json`,
		},
		{
			name: "unknown field rejected",
			data: `{
				"name": "gongwen", "displayName": "x", "description": "x",
				"version": "1.0.0", "author": "x", "license": "MIT",
				"category": "other", "minPrestoVersion": "0.1.0",
				"surprise": true
			}`,
		},
		{
			name: "trailing data",
			data: validManifest + `{"name": "second"}`,
		},
		{
			name: "missing name",
			data: `{
				"displayName": "x", "description": "x", "version": "1.0.0",
				"author": "x", "license": "MIT", "category": "other",
				"minPrestoVersion": "0.1.0"
			}`,
		},
		{
			name: "missing license",
			data: `{
				"name": "gongwen", "displayName": "x", "description": "x",
				"version": "1.0.0", "author": "x", "category": "other",
				"minPrestoVersion": "0.1.0"
			}`,
		},
		{
			name: "invalid name slug",
			data: `{
				"name": "../escape", "displayName": "x", "description": "x",
				"version": "1.0.0", "author": "x", "license": "MIT",
				"category": "other", "minPrestoVersion": "0.1.0"
			}`,
		},
		{
			name: "version not semver",
			data: `{
				"name": "gongwen", "displayName": "x", "description": "x",
				"version": "latest", "author": "x", "license": "MIT",
				"category": "other", "minPrestoVersion": "0.1.0"
			}`,
		},
		{
			name: "minPrestoVersion not semver",
			data: `{
				"name": "gongwen", "displayName": "x", "description": "x",
				"version": "1.0.0", "author": "x", "license": "MIT",
				"category": "other", "minPrestoVersion": "recent"
			}`,
		},
		{
			name: "empty object",
			data: `{}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data))
			if !errors.Is(err, ErrMalformedManifest) {
				t.Errorf("Parse() error = %v, want ErrMalformedManifest", err)
			}
		})
	}
}

func TestParseOptionalFieldsAbsent(t *testing.T) {
	data := `{
		"name": "gongwen", "displayName": "x", "description": "x",
		"version": "1.0.0", "author": "x", "license": "MIT",
		"category": "other", "minPrestoVersion": "0.1.0"
	}`
	m, err := Parse([]byte(data))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if m.Keywords != nil || m.Fonts != nil || m.Fields != nil {
		t.Errorf("optional fields should be zero: %+v", m)
	}
}
