package styles

import (
	"path/filepath"
	"strings"
)

// Tip: To find icons use https://github.com/loichyan/nerdfix

var (
	IconGitBranch = "" //
	IconGit       = "" //
	IconViewed    = "✓"
	IconSearch    = "/"
)

// Directory icons
var (
	IconFolderOpen   = "" //
	IconFolderClosed = "" //
)

// File type icons
var (
	IconFileDefault  = " "  //
	IconFileGo       = " "  //
	IconFileJS       = "󰌞 " //
	IconFileTS       = "󰛦 " //
	IconFilePython   = " "  //
	IconFileMarkdown = " "  //
	IconFileJSON     = " "  //
	IconFileYAML     = ""   //
	IconFileTOML     = " "  //
	IconFileHTML     = " "  //
	IconFileCSS      = " "  //
	IconFileRust     = " "  //
	IconFileC        = " "  //
	IconFileCPP      = " "  //
	IconFileJava     = " "  //
	IconFileRuby     = " "  //
	IconFilePHP      = " "  //
	IconFileShell    = " "  //
	IconFileLua      = " "  //
	IconFileDocker   = "󰡨 " //
	IconFileMakefile = " "  //
	IconFileReadme   = IconFileMarkdown
)

var iconsByExt = map[string]string{
	".go":   IconFileGo,
	".js":   IconFileJS,
	".jsx":  IconFileJS,
	".mjs":  IconFileJS,
	".ts":   IconFileTS,
	".tsx":  IconFileTS,
	".py":   IconFilePython,
	".md":   IconFileMarkdown,
	".json": IconFileJSON,
	".yaml": IconFileYAML,
	".yml":  IconFileYAML,
	".toml": IconFileTOML,
	".html": IconFileHTML,
	".css":  IconFileCSS,
	".scss": IconFileCSS,
	".rs":   IconFileRust,
	".c":    IconFileC,
	".h":    IconFileC,
	".cpp":  IconFileCPP,
	".cc":   IconFileCPP,
	".hpp":  IconFileCPP,
	".java": IconFileJava,
	".rb":   IconFileRuby,
	".php":  IconFilePHP,
	".sh":   IconFileShell,
	".bash": IconFileShell,
	".zsh":  IconFileShell,
	".lua":  IconFileLua,
}

// IconForFile returns the file type icon for a path based on its name
// or extension.
func IconForFile(path string) string {
	name := strings.ToLower(filepath.Base(path))
	switch {
	case name == "dockerfile":
		return IconFileDocker
	case name == "makefile":
		return IconFileMakefile
	case strings.HasPrefix(name, "readme"):
		return IconFileReadme
	}

	if icon, ok := iconsByExt[filepath.Ext(name)]; ok {
		return icon
	}
	return IconFileDefault
}
