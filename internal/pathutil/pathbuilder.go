// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

// Package pathutil builds on-disk directory paths from git clone URLs and
// resolves name collisions across providers. Grounded on
// original_source/mgit/git/utils.py (build_repo_path, sanitize_path_segment)
// and original_source/mgit/utils/collision_resolver.py.
package pathutil

import (
	"net/url"
	"regexp"
	"strings"
)

var forbiddenChars = regexp.MustCompile(`[<>:"|?*\x00-\x1f]`)

var windowsReservedNames = map[string]bool{
	"CON": true, "PRN": true, "AUX": true, "NUL": true,
	"COM1": true, "COM2": true, "COM3": true, "COM4": true, "COM5": true,
	"COM6": true, "COM7": true, "COM8": true, "COM9": true,
	"LPT1": true, "LPT2": true, "LPT3": true, "LPT4": true, "LPT5": true,
	"LPT6": true, "LPT7": true, "LPT8": true, "LPT9": true,
}

// SanitizeSegment makes s safe as a single path component: strips control
// and `<>:"|?*` characters, collapses `/`/`\` to `-`, trims trailing dots,
// suffixes Windows reserved device names with `_`, and falls back to
// "unnamed" for an empty result.
func SanitizeSegment(s string) string {
	s = strings.TrimSpace(s)
	s = forbiddenChars.ReplaceAllString(s, "")
	s = strings.NewReplacer("/", "-", "\\", "-").Replace(s)
	s = strings.TrimRight(s, ".")
	if s == "" {
		return "unnamed"
	}
	if windowsReservedNames[strings.ToUpper(s)] {
		s += "_"
	}
	return s
}

// BuildRepoPath returns the path segments (host, org segments..., repo
// name) for cloneURL. When flat is true, only the final (repo name)
// segment is returned. On an unparsable URL, it falls back to a single
// sanitized segment derived from the raw string.
func BuildRepoPath(cloneURL string, flat bool) []string {
	parsed, err := url.Parse(cloneURL)
	if err != nil || parsed.Hostname() == "" {
		return []string{SanitizeSegment(fallbackName(cloneURL))}
	}

	host := parsed.Hostname()
	rawPath := strings.TrimPrefix(parsed.Path, "/")
	decoded, err := url.PathUnescape(rawPath)
	if err != nil {
		decoded = rawPath
	}

	var segments []string
	for _, seg := range strings.Split(decoded, "/") {
		if seg == "" || strings.HasPrefix(seg, "_") {
			continue
		}
		segments = append(segments, seg)
	}

	if isAzureDevOpsHost(host) && len(segments) > 0 && strings.EqualFold(segments[0], "DefaultCollection") {
		segments = segments[1:]
	}

	if n := len(segments); n > 0 && strings.HasSuffix(segments[n-1], ".git") {
		segments[n-1] = strings.TrimSuffix(segments[n-1], ".git")
	}

	safeSegments := make([]string, len(segments))
	for i, seg := range segments {
		safeSegments[i] = SanitizeSegment(seg)
	}

	if flat {
		if len(safeSegments) == 0 {
			return []string{"unnamed"}
		}
		return safeSegments[len(safeSegments)-1:]
	}

	return append([]string{SanitizeSegment(host)}, safeSegments...)
}

func isAzureDevOpsHost(host string) bool {
	host = strings.ToLower(host)
	return strings.HasSuffix(host, "visualstudio.com") || strings.HasSuffix(host, "dev.azure.com")
}

func fallbackName(raw string) string {
	raw = strings.TrimSuffix(raw, ".git")
	if idx := strings.LastIndexByte(raw, '/'); idx >= 0 {
		return raw[idx+1:]
	}
	return raw
}
