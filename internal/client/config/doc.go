// Package config loads runtime configuration for the FileKeeper CLI.
//
// Sources, later ones overriding earlier ones:
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. A JSON file selected with -c or -config.
//  3. FILEKEEPER_* environment variables.
//  4. Command-line flags -a, -t, -s and -l.
//
// JSON example:
//
//	{
//	  "api_base_url": "https://files.example.com",
//	  "request_timeout": "180s",
//	  "store_path": "filekeeper.db",
//	  "log_level": "info",
//	  "log_file": "filekeeper.log"
//	}
package config
