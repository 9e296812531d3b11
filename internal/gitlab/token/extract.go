// Copyright 2026 AlaudaDevops
// SPDX-License-Identifier: Apache-2.0

// Package token mints a GitLab personal access token through the web UI
// when no token is configured. The markup of the sign-in and token pages is
// not a contract, so every extraction is an ordered chain of named
// strategies: the first one that yields a value wins and its name is
// reported, which keeps the fallback behavior observable and testable.
package token

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/pkg/errors"
)

// CSRFStrategy is one way of digging the authenticity token out of a page.
type CSRFStrategy struct {
	// Name identifies the strategy in logs and errors.
	Name string

	// Extract returns the token and whether this strategy found one.
	Extract func(doc *goquery.Document) (string, bool)
}

// DefaultCSRFStrategies is the priority-ordered extraction chain.
var DefaultCSRFStrategies = []CSRFStrategy{
	{
		Name: "input-field",
		Extract: func(doc *goquery.Document) (string, bool) {
			return attrValue(doc.Find(`input[name="authenticity_token"]`).First(), "value")
		},
	},
	{
		Name: "meta-csrf-token",
		Extract: func(doc *goquery.Document) (string, bool) {
			return attrValue(doc.Find(`meta[name="csrf-token"]`).First(), "content")
		},
	},
	{
		Name: "meta-csrf-param",
		Extract: func(doc *goquery.Document) (string, bool) {
			param, ok := attrValue(doc.Find(`meta[name="csrf-param"]`).First(), "content")
			if !ok {
				param = "authenticity_token"
			}

			return attrValue(doc.Find(`input[name="`+param+`"]`).First(), "value")
		},
	},
	{
		Name: "input-name-contains-token",
		Extract: func(doc *goquery.Document) (token string, found bool) {
			doc.Find("input").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
				name, _ := sel.Attr("name")
				if !strings.Contains(strings.ToLower(name), "token") {
					return true
				}

				token, found = attrValue(sel, "value")

				return !found
			})

			return token, found
		},
	},
}

// ExtractCSRF applies the strategies in order and returns the token and the
// name of the strategy that produced it.
func ExtractCSRF(doc *goquery.Document, strategies []CSRFStrategy) (token, strategy string, err error) {
	for _, s := range strategies {
		if value, ok := s.Extract(doc); ok {
			return value, s.Name, nil
		}
	}

	return "", "", errors.New("no authenticity token found in page")
}

// personalAccessTokenPattern matches tokens as GitLab prints them.
var personalAccessTokenPattern = regexp.MustCompile(`glpat-[a-zA-Z0-9_-]{20,}`)

// ExtractPersonalAccessToken finds a freshly minted token in a page, first
// by element text, then by pattern-matching the raw markup.
func ExtractPersonalAccessToken(doc *goquery.Document, raw string) (string, bool) {
	var token string

	doc.Find("code, pre, input").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		candidate := strings.TrimSpace(sel.Text())
		if candidate == "" {
			candidate, _ = sel.Attr("value")
			candidate = strings.TrimSpace(candidate)
		}

		if strings.HasPrefix(candidate, "glpat-") {
			token = candidate

			return false
		}

		return true
	})

	if token != "" {
		return token, true
	}

	if match := personalAccessTokenPattern.FindString(raw); match != "" {
		return match, true
	}

	return "", false
}

func attrValue(sel *goquery.Selection, attr string) (string, bool) {
	value, exists := sel.Attr(attr)
	if !exists || value == "" {
		return "", false
	}

	return value, true
}
