package shellenv

import (
	"os"
	"path/filepath"
	"strings"
)

// EnsurePath prepends dir to a PATH value unless it is already one of its
// elements. Unlike the fragment's substring guard, a dir that only appears
// as part of a longer element is still added.
func EnsurePath(pathEnv, dir string) string {
	if dir == "" {
		return pathEnv
	}
	for _, elem := range filepath.SplitList(pathEnv) {
		if filepath.Clean(elem) == filepath.Clean(dir) {
			return pathEnv
		}
	}
	if pathEnv == "" {
		return dir
	}
	return dir + string(os.PathListSeparator) + pathEnv
}

// EnsurePathEnv returns a copy of env whose PATH contains every dir.
// Dirs are prepended in reverse so they end up in the given order.
func EnsurePathEnv(env []string, dirs ...string) []string {
	out := make([]string, 0, len(env)+1)
	pathEnv := ""
	for _, kv := range env {
		if value, ok := strings.CutPrefix(kv, "PATH="); ok {
			pathEnv = value
			continue
		}
		out = append(out, kv)
	}

	for i := len(dirs) - 1; i >= 0; i-- {
		pathEnv = EnsurePath(pathEnv, dirs[i])
	}
	return append(out, "PATH="+pathEnv)
}
