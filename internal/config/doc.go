// Package config loads the settings that shape a rope and the tools
// around it.
//
// Settings come from three layers, later layers overriding earlier ones:
//
//  1. built-in defaults (Default)
//  2. a .toml, .yaml or .yml file
//  3. SPLICEROPE_* environment variables
//
// A missing file is not an error. Load applies all three layers and
// validates the result:
//
//	cfg, err := config.Load("ropectl.toml")
//	if err != nil {
//	    return err
//	}
//	r, err := rope.New(data, cfg.RopeOptions()...)
package config
