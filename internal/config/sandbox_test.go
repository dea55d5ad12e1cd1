package config

import (
	"strings"
	"testing"
)

func TestSandboxedVM(t *testing.T) {
	tests := []struct {
		name    string
		code    string
		wantErr bool
		errMsg  string
	}{
		// Declarative config building blocks keep working.
		{
			name:    "string operations allowed",
			code:    `x = string.upper("gongwen")`,
			wantErr: false,
		},
		{
			name:    "table operations allowed",
			code:    `t = {1, 2, 3}; table.insert(t, 4)`,
			wantErr: false,
		},
		{
			name:    "math operations allowed",
			code:    `x = math.max(30, 120)`,
			wantErr: false,
		},
		{
			name:    "pairs and ipairs allowed",
			code:    `t = {a=1, b=2}; for k,v in pairs(t) do end`,
			wantErr: false,
		},

		// Anything reaching outside the VM is gone.
		{
			name:    "os.execute blocked",
			code:    `os.execute("ls")`,
			wantErr: true,
			errMsg:  "attempt to index",
		},
		{
			name:    "os.getenv blocked",
			code:    `x = os.getenv("GITHUB_TOKEN")`,
			wantErr: true,
			errMsg:  "attempt to index",
		},
		{
			name:    "io.open blocked",
			code:    `f = io.open("/etc/passwd")`,
			wantErr: true,
			errMsg:  "attempt to index",
		},
		{
			name:    "require blocked",
			code:    `socket = require("socket")`,
			wantErr: true,
			errMsg:  "attempt to call",
		},
		{
			name:    "dofile blocked",
			code:    `dofile("/tmp/evil.lua")`,
			wantErr: true,
			errMsg:  "attempt to call",
		},
		{
			name:    "loadfile blocked",
			code:    `f = loadfile("/tmp/evil.lua")`,
			wantErr: true,
			errMsg:  "attempt to call",
		},
		{
			name:    "load blocked",
			code:    `f = load("return 1+1")`,
			wantErr: true,
			errMsg:  "attempt to call",
		},
		{
			name:    "loadstring blocked",
			code:    `f = loadstring("return 1+1")`,
			wantErr: true,
			errMsg:  "attempt to call",
		},
		{
			name:    "debug library blocked",
			code:    `debug.getinfo(1)`,
			wantErr: true,
			errMsg:  "attempt to index",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			L := newSandboxedVM()
			defer L.Close()

			err := L.DoString(tt.code)
			if tt.wantErr {
				if err == nil {
					t.Fatal("DoString() succeeded, want sandbox error")
				}
				if !strings.Contains(err.Error(), tt.errMsg) {
					t.Errorf("error = %q, want substring %q", err.Error(), tt.errMsg)
				}
				return
			}
			if err != nil {
				t.Errorf("DoString() error = %v", err)
			}
		})
	}
}
