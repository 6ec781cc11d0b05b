package shareindex

import (
	"path/filepath"
	"strings"
)

// AliasPath builds the backslash-delimited wire path for a file at
// relPath (OS-native separators) under a share root exposed as alias,
// regardless of host OS.
func AliasPath(alias, relPath string) string {
	parts := strings.Split(filepath.ToSlash(relPath), "/")
	return alias + `\` + strings.Join(parts, `\`)
}

// AliasedToReal reverses AliasPath given the real root path the alias
// maps to, rebuilding an OS-native path.
func AliasedToReal(rootPath, alias, aliased string) string {
	trimmed := strings.TrimPrefix(aliased, alias+`\`)
	parts := strings.Split(trimmed, `\`)
	return filepath.Join(append([]string{rootPath}, parts...)...)
}
