// Package config loads Santorini table presets and server settings.
//
// Presets live in one directory as JSON (.json) or YAML (.yaml, .yml)
// files. Each file is checked against the embedded preset.schema.json and
// then against the engine's own table rules before it is cached. A preset
// is addressed by its file name without extension, so configs/classic.json
// is "classic".
//
// A preset looks like:
//
//	name: trio
//	description: Three players on a wider board
//	rows: 6
//	cols: 6
//	players:
//	  - name: Ann
//	    god: artemis
//	  - name: Bo
//	  - name: Cy
//	helpful_tokens: 1
//	placement: manual
//	time_bank_seconds: 300
//
// Settings carries the server options read from SANTORINI_* environment
// variables.
//
// Usage:
//
//	manager, err := config.NewManager("configs")
//	if err != nil {
//		log.Fatal(err)
//	}
//	preset, err := manager.LoadConfig("classic")
package config
