// Package config resolves everything a run needs before the first API call:
// .env files, the build definition on disk and the validated run settings.
package config
