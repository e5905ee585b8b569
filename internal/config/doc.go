// Package config loads and validates the gateway's credentials and runtime
// settings (spec §4.A, §6.1).
//
// Two sources are merged: an .edgerc-style INI file and the process
// environment, with the environment taking precedence key-by-key. The
// result is an immutable Credentials value (never logged or serialized) and
// a Settings value holding the log level and the retry/timeout bounds. Validation
// fails fast on the first invalid field, returning a single *Error that
// names the field but never a credential value.
//
// # File format
//
//	[default]
//	host = akab-xxxxxxxxxxxxxxxx.luna.akamaiapis.net
//	client_token = akab-xxxxxxxxxxxxxxxx
//	client_secret = xxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxxx
//	access_token = akab-xxxxxxxxxxxxxxxx
//	account_key = 1-ABCDE
//
// # Environment overrides
//
// AKAMAI_HOST, AKAMAI_CLIENT_TOKEN, AKAMAI_CLIENT_SECRET, AKAMAI_ACCESS_TOKEN,
// AKAMAI_ACCOUNT_KEY, LOG_LEVEL, MAX_RETRIES, RETRY_DELAY_MS,
// REQUEST_TIMEOUT_MS, EDGERC_SECTION, EDGERC_PATH.
package config
