package review

import "strings"

// SidebarItem is one row of the file tree: a directory header or a file.
// FileIndex points into the session's file list and is -1 for directories.
type SidebarItem struct {
	Name      string
	Path      string
	Depth     int
	IsDir     bool
	FileIndex int
	Status    FileStatus
}

// BuildTree flattens changed files into tree rows. Files keep their input
// order; a directory row is emitted the first time a path component is
// seen, so children always follow their directory.
func BuildTree(files []FileDiff) []SidebarItem {
	var items []SidebarItem
	seen := make(map[string]bool)
	for i, f := range files {
		parts := strings.Split(f.Filename, "/")
		for d := 0; d < len(parts)-1; d++ {
			dir := strings.Join(parts[:d+1], "/")
			if seen[dir] {
				continue
			}
			seen[dir] = true
			items = append(items, SidebarItem{
				Name:      parts[d],
				Path:      dir,
				Depth:     d,
				IsDir:     true,
				FileIndex: -1,
			})
		}
		items = append(items, SidebarItem{
			Name:      parts[len(parts)-1],
			Path:      f.Filename,
			Depth:     len(parts) - 1,
			FileIndex: i,
			Status:    f.Status,
		})
	}
	return items
}

// visibleIndices projects tree rows through the collapse set: a row is
// hidden iff any proper ancestor directory is collapsed. A collapsed
// directory stays visible itself.
func visibleIndices(items []SidebarItem, collapsed map[string]bool) []int {
	visible := make([]int, 0, len(items))
	for i, it := range items {
		if !hiddenByCollapse(it.Path, collapsed) {
			visible = append(visible, i)
		}
	}
	return visible
}

func hiddenByCollapse(path string, collapsed map[string]bool) bool {
	for {
		idx := strings.LastIndexByte(path, '/')
		if idx < 0 {
			return false
		}
		path = path[:idx]
		if collapsed[path] {
			return true
		}
	}
}

// DirHasFiles reports whether any file row sits under the directory.
func DirHasFiles(items []SidebarItem, dir string) bool {
	prefix := dir + "/"
	for _, it := range items {
		if !it.IsDir && strings.HasPrefix(it.Path, prefix) {
			return true
		}
	}
	return false
}
