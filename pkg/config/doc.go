// Package config loads igapi settings.
//
// Sources, highest precedence first:
//
//   - command line flags (see MergeCommandLineFlags)
//   - IGAPI_* environment variables
//   - .env and ~/.igapi.env files
//   - a YAML file (.igapi.yaml or ~/.config/igapi/config.yaml)
//   - DefaultConfig
//
// Example file:
//
//	api:
//	  timeout: 20s
//	  auto_patch: true
//	device:
//	  user_agent: "Instagram 10.26.0 Android (24/7.0; 640dpi; 1440x2560; samsung; SM-G930F; herolte; samsungexynos8890; en_US)"
//	session:
//	  username: jane
//	  store: encrypted
//	rate_limit:
//	  requests_per_minute: 20
//	  burst_size: 3
package config
