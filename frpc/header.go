// © Copyright 2025-2026, Query.Farm LLC - https://query.farm
// SPDX-License-Identifier: Apache-2.0

package frpc

import "strings"

// SplitBySpace splits line on runs of spaces and tabs into at most upto
// fields; the last field keeps the unsplit remainder. upto <= 0 means no
// limit. It is used for status and request lines.
func SplitBySpace(line string, upto int) []string {
	var fields []string
	rest := strings.TrimLeft(line, " \t")
	for rest != "" {
		if upto > 0 && len(fields) == upto-1 {
			fields = append(fields, strings.TrimRight(rest, " \t"))
			break
		}
		end := strings.IndexAny(rest, " \t")
		if end < 0 {
			fields = append(fields, rest)
			break
		}
		fields = append(fields, rest[:end])
		rest = strings.TrimLeft(rest[end:], " \t")
	}
	return fields
}

// HeaderValue splits a "Name: value" header line. Whitespace around the
// value is trimmed. ok is false when the line has no colon, an empty name or
// whitespace anywhere in the name (RFC 7230 section 3.2.4); the caller decides
// whether that is fatal.
func HeaderValue(line string) (name, value string, ok bool) {
	colon := strings.IndexByte(line, ':')
	if colon < 0 {
		return "", "", false
	}
	name = line[:colon]
	if name == "" || strings.ContainsAny(name, " \t") {
		return "", "", false
	}
	return name, strings.Trim(line[colon+1:], " \t"), true
}
