// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

ParseFlags returns a Config struct with all settings:

	cfg, err := cliparse.ParseFlags(os.Args[1:])

# Sources

Values are resolved in this order, later sources winning:

 1. struct defaults (envDefault tags)
 2. a .env file (-env-file, default ".env", skipped if missing)
 3. process environment variables
 4. CLI flags that were explicitly passed

A .env file never overrides a variable that is already set in the process.

# CLI Flags and Environment Variables

	-p               PORT               Server port (default 3318)
	-d               DATABASE_URL       Local cache DSN (default file:petition.db)
	-t               DATABASE_TYPE      sqlite or postgres (default sqlite)
	-r               REMOTE_STORE_URL   Remote signature store endpoint (required)
	-sync-interval   SYNC_INTERVAL      Time between sync passes (default 30s)
	-remote-timeout  REMOTE_TIMEOUT     Timeout per remote call (default 10s)
	-write-retries   WRITE_RETRIES      Precondition retries on write (default 0, off)
	-target          TARGET_SIGNATURES  Signature goal (default 1000)
	-public-url      PUBLIC_URL         Base URL for share links
	-client-salt     CLIENT_KEY_SALT    Client cookie HMAC secret (required)

# Validation

ParseFlags returns an error if REMOTE_STORE_URL or CLIENT_KEY_SALT is missing,
if DATABASE_TYPE is unknown, or if a duration or count is not positive.
*/
package cliparse
