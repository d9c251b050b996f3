// Package config reads process configuration from environment variables once
// at startup. The resulting Config is immutable for the process lifetime;
// components receive the values they need explicitly rather than consulting
// ambient state.
package config
