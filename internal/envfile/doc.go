// Package envfile reads dotenv-style environment-definition files into an
// ordered key/value mapping. Parsing is line based and best-effort: lines that
// do not look like KEY=VALUE are skipped without error.
package envfile
