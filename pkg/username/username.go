// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package username canonicalises account usernames so that visually identical
// names collide on the unique index.
//
// # Transformation Pipeline
//
//  1. Trims surrounding whitespace.
//  2. Normalizes to NFKC (compatibility forms: "ｐｉｎ" → "pin").
//  3. Applies Unicode case folding ("Alice" and "ALICE" → "alice").
package username

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

const (
	// MinLength is the minimum number of characters after canonicalisation.
	MinLength = 3
	// MaxLength is the maximum number of characters after canonicalisation.
	MaxLength = 64
)

// Canonical returns the comparison form of a username.
func Canonical(raw string) string {
	trimmed := strings.TrimSpace(raw)
	normalized := norm.NFKC.String(trimmed)
	return cases.Fold().String(normalized)
}

// Valid reports whether a canonical username has an acceptable length and only
// letters, digits, '.', '_' or '-'.
func Valid(canonical string) bool {
	length := utf8.RuneCountInString(canonical)
	if length < MinLength || length > MaxLength {
		return false
	}

	for _, r := range canonical {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '.' || r == '_' || r == '-' {
			continue
		}
		return false
	}
	return true
}
