// Package config handles configuration loading for chatrelay.
//
// # Overview
//
// Configuration is loaded from a YAML or TOML file with environment variable
// expansion. When no file exists, an embedded default is used whose values are
// all taken from the environment, so a bare deployment only needs env vars.
//
// # Configuration File
//
// Location (first match wins):
//
//  1. Path from the CHATRELAY_CONFIG environment variable
//  2. $XDG_CONFIG_HOME/chatrelay/config.yaml
//  3. ~/.config/chatrelay/config.yaml
//
// # Environment Variable Expansion
//
//	assistant:
//	  api_key: "${OPENAI_API_KEY}"
//
// Unset variables expand to the empty string.
//
// # Configuration Sections
//
//	server:
//	  http_addr: ":3001"
//
//	assistant:
//	  api_key: "${OPENAI_API_KEY}"
//	  assistant_id: "${ASSISTANT_ID}"
//	  poll_interval: "1s"
//	  max_poll_attempts: 120
//
//	mail:
//	  host: "smtp.example.com"
//	  port: 587
//	  from: "bot@example.com"
//	  to: "sales@example.com"
//	  tls_policy: "opportunistic"   # opportunistic, mandatory, none
//
//	matrix:
//	  enabled: false
//	  room_id: "!leads:example.com"
//
//	notify:
//	  timeout: "30s"
//	  dedupe_ttl: "24h"             # "0s" disables duplicate suppression
//
//	viewer:
//	  username: "${LOG_EMAIL}"
//	  password: "${LOG_PASSWORD}"
//
//	history:
//	  backend: "memory"             # memory, sqlite
//	  max_entries: 1000             # 0 keeps everything
//
// # Validation
//
// Parse validates the assistant credentials, mail addresses when a mail host is
// set, the Matrix room when Matrix is enabled, and the history backend.
package config
