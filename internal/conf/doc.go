// Package conf implements drop-in configuration file support for inicfg.
//
// # Usage
//
// The global Configuration variable is loaded at package initialization.
// When the system files cannot be read or parsed, Configuration holds the
// embedded defaults and Err holds the reason:
//
//	import "github.com/redhatinsights/inicfg/internal/conf"
//
//	func main() {
//	    if conf.Err != nil {
//	        slog.Warn("using default configuration", "error", conf.Err)
//	    }
//	    fmt.Println(conf.Configuration.LogLevel)
//	}
//
// For custom configuration loading (e.g., testing), use ConfigSource:
//
//	cs := &conf.ConfigSource{
//	    Path:      "/custom/path/config.toml",
//	    DropInDir: "/custom/path/config.toml.d",
//	}
//	config, err := cs.Read()
//
// # Keys
//
//   - log-level: DEBUG, INFO, WARN or ERROR. Defaults to WARN.
//   - pretty-format: align "=" signs when writing INI files. Defaults to false.
//   - file-mode: octal permissions of newly created INI files. Defaults to "0644".
//
// # Load Order
//
//  1. Embedded defaults (default.toml)
//  2. Main config file: /etc/inicfg/config.toml
//  3. Drop-in files: /etc/inicfg/config.toml.d/*.toml, in lexicographic order
//
// A key missing from a layer keeps the value of the layer below it. The
// TOML is decoded into a DTO with pointer fields so that "not set" (nil)
// can be told apart from "set to the zero value".
package conf
