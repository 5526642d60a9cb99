// Package config provides user configuration management for smartplug.
//
// This package manages a YAML file that maps user-chosen names to plug
// addresses and holds CLI preferences (exchange timeout, default port and
// output format). The file location follows OS-specific conventions.
//
// # Configuration File Location
//
//   - Linux: $XDG_CONFIG_HOME/smartplug/config.yaml or $HOME/.config/smartplug/config.yaml
//   - macOS: $HOME/.config/smartplug/config.yaml
//   - Windows: %LOCALAPPDATA%\smartplug\config.yaml
//
// # File Format
//
//	version: 1
//	devices:
//	  lamp:
//	    address: 192.168.0.42
//	    alias: Living Room
//	    model: HS110(EU)
//	preferences:
//	  timeout: 5000
//	  default_port: 9999
//	  output_format: detailed
//
// # Security
//
// Cloud account and Wi-Fi passwords are never written to this file. The CLI
// prompts for them when needed.
//
// # Usage Example
//
//	registry, err := config.LoadRegistry()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	address, _, err := registry.Resolve("lamp")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	plug := device.New(address)
//
// Saves are atomic: the registry is written to a temporary file which is
// then renamed over the original.
package config
