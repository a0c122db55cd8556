package server

import (
	"os"
	"path"
	"path/filepath"
	"strings"
)

type TargetKind int

const (
	TargetMissing TargetKind = iota
	TargetRedirect
	TargetDirectory
	TargetFile
)

func (k TargetKind) String() string {
	switch k {
	case TargetRedirect:
		return "redirect"
	case TargetDirectory:
		return "directory"
	case TargetFile:
		return "file"
	default:
		return "missing"
	}
}

// ResolvedTarget classifies a request path. Location is set for
// redirects, Path for everything else.
type ResolvedTarget struct {
	Kind     TargetKind
	Location string
	Path     string
}

// Resolve maps a decoded URL path onto the web root. A path that does not
// exist and lacks a trailing slash is redirected to its slash form; paths
// that climb out of the web root with ".." resolve to Missing.
func Resolve(decodedPath, webRoot string) ResolvedTarget {
	root := filepath.Clean(webRoot)
	trailing := strings.HasSuffix(decodedPath, "/")

	candidate := filepath.Join(root, filepath.FromSlash(decodedPath))
	if !within(root, candidate) {
		clamped := filepath.Join(root, filepath.FromSlash(path.Clean("/"+decodedPath)))
		return ResolvedTarget{Kind: TargetMissing, Path: clamped}
	}
	if trailing && candidate != root {
		candidate += string(filepath.Separator)
	}

	var isDir, isFile bool
	if info, err := os.Stat(candidate); err == nil {
		isDir = info.IsDir()
		isFile = info.Mode().IsRegular()
	}

	switch {
	case !isDir && !isFile && !trailing:
		return ResolvedTarget{Kind: TargetRedirect, Location: decodedPath + "/"}
	case isDir:
		return ResolvedTarget{Kind: TargetDirectory, Path: candidate}
	case isFile:
		return ResolvedTarget{Kind: TargetFile, Path: candidate}
	default:
		return ResolvedTarget{Kind: TargetMissing, Path: candidate}
	}
}

// requestDir is the directory a custom 404.html is looked up in.
func requestDir(targetPath string) string {
	return filepath.Dir(filepath.Clean(targetPath))
}

func within(root, target string) bool {
	rel, err := filepath.Rel(root, target)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
