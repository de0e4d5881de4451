package vcs

import (
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
)

// excludePattern covers the fixed cross-backend diff denylist: auto-generated
// lock files and vendored node_modules trees. Lock files change on nearly
// every dependency bump and vendored code bloats diffs, so both are excluded
// from every diff-producing call regardless of backend.
const excludePattern = "{**/node_modules/**,**/{package-lock.json,yarn.lock,pnpm-lock.yaml,Cargo.lock}}"

// gitExcludePathspecs limits git diff commands to the same denylist,
// expressed as pathspecs appended after the `--` separator.
var gitExcludePathspecs = []string{
	"--",
	".",
	":(exclude)package-lock.json",
	":(exclude)yarn.lock",
	":(exclude)pnpm-lock.yaml",
	":(exclude)Cargo.lock",
	":(exclude)node_modules/**",
}

// Excluded reports whether path is covered by the diff denylist.
func Excluded(path string) bool {
	ok, err := doublestar.Match(excludePattern, filepath.ToSlash(path))
	return err == nil && ok
}

// filterExcluded drops denylisted paths, preserving order.
func filterExcluded(paths []string) []string {
	kept := paths[:0]
	for _, p := range paths {
		if !Excluded(p) {
			kept = append(kept, p)
		}
	}
	return kept
}
