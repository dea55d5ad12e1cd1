// Package config loads the registry build configuration.
//
// The build configuration is a declarative Lua file (registry.lua) evaluated
// in a sandboxed VM: the os, io, and code-loading primitives are removed
// before the file runs, so a config can describe the registry but cannot
// touch the system. The verified allow-list is a separate YAML file so it
// can be reviewed and maintained independently of the build settings.
//
// # Example registry.lua
//
//	registry = {
//	    organization = "Presto-io",
//	    official_repo = "Presto-io/Presto",
//	    topic = "presto-template",
//	    hero = "gongwen",
//	    official = {
//	        { name = "gongwen",       cmd_path = "cmd/gongwen" },
//	        { name = "jiaoan-shicao", cmd_path = "cmd/jiaoan-shicao" },
//	    },
//	    categories = {
//	        government = { zh = "政务", en = "Government" },
//	        education  = { zh = "教育", en = "Education" },
//	    },
//	    limits = {
//	        exec_timeout   = 30,
//	        render_timeout = 120,
//	    },
//	}
package config
