package summary

import (
	"fmt"
	"sort"
	"strings"

	"github.com/Gajesh2007/weekend-activity/internal/github"
)

// maxFilesInPrompt caps how many changed files are embedded in a prompt.
const maxFilesInPrompt = 5

// patchLineLimit is the point past which a patch body gets elided down to
// its first and last patchKeepLines lines.
const (
	patchLineLimit = 50
	patchKeepLines = 20
)

// ignoredFiles lists diff entries that carry no signal for summarization:
// lockfiles, build output, vendored dependencies, minified assets, and
// editor metadata. Entries ending in "/" match as path prefixes and
// entries starting with "*." match as suffix patterns.
var ignoredFiles = []string{
	"package-lock.json",
	"yarn.lock",
	"pnpm-lock.yaml",
	"poetry.lock",
	"Gemfile.lock",
	"composer.lock",
	"dist/",
	"build/",
	".next/",
	"node_modules/",
	"vendor/",
	"*.min.js",
	"*.min.css",
	".idea/",
	".vscode/",
	".DS_Store",
	"Thumbs.db",
}

// shouldIncludeFile reports whether a changed file belongs in the prompt.
func shouldIncludeFile(filename string) bool {
	for _, pattern := range ignoredFiles {
		switch {
		case strings.HasSuffix(pattern, "/"):
			if strings.HasPrefix(filename, pattern) {
				return false
			}
		case strings.HasPrefix(pattern, "*."):
			if strings.Contains(filename, pattern[1:]) {
				return false
			}
		default:
			if filename == pattern {
				return false
			}
		}
	}
	return true
}

// fileRank orders files for prompt inclusion: source code first, then
// documentation, then structured config, then everything else.
func fileRank(filename string) int {
	lower := strings.ToLower(filename)
	for _, ext := range []string{".py", ".js", ".ts", ".go", ".rs", ".java"} {
		if strings.Contains(lower, ext) {
			return 0
		}
	}
	for _, ext := range []string{".md", ".txt", ".rst"} {
		if strings.Contains(lower, ext) {
			return 1
		}
	}
	for _, ext := range []string{".json", ".yaml", ".yml", ".toml"} {
		if strings.Contains(lower, ext) {
			return 2
		}
	}
	return 3
}

// relevantFiles filters the denylist out of a changed-file list.
func relevantFiles(files []github.ChangedFile) []github.ChangedFile {
	var out []github.ChangedFile
	for _, f := range files {
		if shouldIncludeFile(f.Filename) {
			out = append(out, f)
		}
	}
	return out
}

// formatDiff renders the filtered changed files into the prompt body. The
// files are ranked by importance and truncated to maxFilesInPrompt, with a
// note stating how many were omitted when truncation happens. Oversized
// patches keep only their head and tail around an elision marker.
func formatDiff(files []github.ChangedFile) string {
	sort.SliceStable(files, func(i, j int) bool {
		return fileRank(files[i].Filename) < fileRank(files[j].Filename)
	})

	selected := files
	if len(files) > maxFilesInPrompt {
		selected = files[:maxFilesInPrompt]
	}

	var lines []string
	if len(files) > maxFilesInPrompt {
		lines = append(lines, fmt.Sprintf(
			"Note: Showing %d most important files out of %d total files changed.",
			maxFilesInPrompt, len(files)))
	}

	for _, f := range selected {
		lines = append(lines, fmt.Sprintf("\nFile: %s", f.Filename))
		lines = append(lines, fmt.Sprintf("Changes: +%d -%d", f.Additions, f.Deletions))
		if f.Patch != "" {
			lines = append(lines, "Diff:")
			lines = append(lines, elidePatch(f.Patch))
		}
	}

	return strings.Join(lines, "\n")
}

// elidePatch keeps the first and last patchKeepLines lines of a patch that
// exceeds patchLineLimit lines, with a marker stating the omitted count.
func elidePatch(patch string) string {
	patchLines := strings.Split(patch, "\n")
	if len(patchLines) <= patchLineLimit {
		return patch
	}

	omitted := len(patchLines) - 2*patchKeepLines
	var out []string
	out = append(out, patchLines[:patchKeepLines]...)
	out = append(out, fmt.Sprintf("... %d lines omitted ...", omitted))
	out = append(out, patchLines[len(patchLines)-patchKeepLines:]...)
	return strings.Join(out, "\n")
}
