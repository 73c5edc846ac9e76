// Package application contains the triage use-case logic: identifier
// resolution, enrichment, scoring, ranking, and recommendation.
package application

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"unicode"

	"github.com/ericfisherdev/prtriage/internal/domain/model"
)

// ErrMalformedIdentifier is returned by Resolve for any input that does not
// match one of the accepted pull request reference forms. It is the only
// domain error this core surfaces to callers.
var ErrMalformedIdentifier = errors.New("malformed pull request identifier")

// Resolve normalizes a pull request reference into (owner, repo, number).
// Accepted forms, tried in order:
//
//  1. Short form: owner/repo#number
//  2. Web URL: https://<host ending in github.com>/{owner}/{repo}/pull/{number}[/...]
//  3. API URL: https://api.github.com/repos/{owner}/{repo}/pulls/{number}
//
// Resolve performs no network access and is total: every input either yields
// a reference or ErrMalformedIdentifier.
func Resolve(identifier string) (model.PRRef, error) {
	s := strings.TrimSpace(identifier)

	if ref, ok := resolveShortForm(s); ok {
		return ref, nil
	}
	if ref, ok := resolveWebURL(s); ok {
		return ref, nil
	}
	if ref, ok := resolveAPIURL(s); ok {
		return ref, nil
	}

	return model.PRRef{}, fmt.Errorf("%w: %q", ErrMalformedIdentifier, identifier)
}

// resolveShortForm matches "owner/repo#number" exactly: a single slash, no
// whitespace in owner or repo, and a bare non-negative integer.
func resolveShortForm(s string) (model.PRRef, bool) {
	path, numStr, ok := strings.Cut(s, "#")
	if !ok {
		return model.PRRef{}, false
	}

	owner, repo, ok := strings.Cut(path, "/")
	if !ok || owner == "" || repo == "" || strings.Contains(repo, "/") {
		return model.PRRef{}, false
	}
	if containsSpace(owner) || containsSpace(repo) {
		return model.PRRef{}, false
	}

	number, ok := parseNumber(numStr)
	if !ok {
		return model.PRRef{}, false
	}

	return model.PRRef{Owner: owner, Repo: repo, Number: number}, true
}

// resolveWebURL matches browser URLs on any host ending in "github.com".
// Path segments after the PR number are ignored.
func resolveWebURL(s string) (model.PRRef, bool) {
	u, err := url.Parse(s)
	if err != nil {
		return model.PRRef{}, false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return model.PRRef{}, false
	}
	if !strings.HasSuffix(u.Hostname(), "github.com") {
		return model.PRRef{}, false
	}

	segs := pathSegments(u.Path)
	if len(segs) < 4 || segs[2] != "pull" {
		return model.PRRef{}, false
	}
	if segs[0] == "" || segs[1] == "" {
		return model.PRRef{}, false
	}

	number, ok := parseNumber(segs[3])
	if !ok {
		return model.PRRef{}, false
	}

	return model.PRRef{Owner: segs[0], Repo: segs[1], Number: number}, true
}

// resolveAPIURL matches REST API URLs of the exact form
// https://api.github.com/repos/{owner}/{repo}/pulls/{number}.
func resolveAPIURL(s string) (model.PRRef, bool) {
	u, err := url.Parse(s)
	if err != nil {
		return model.PRRef{}, false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return model.PRRef{}, false
	}
	if u.Hostname() != "api.github.com" {
		return model.PRRef{}, false
	}

	segs := pathSegments(u.Path)
	if len(segs) != 5 || segs[0] != "repos" || segs[3] != "pulls" {
		return model.PRRef{}, false
	}
	if segs[1] == "" || segs[2] == "" {
		return model.PRRef{}, false
	}

	number, ok := parseNumber(segs[4])
	if !ok {
		return model.PRRef{}, false
	}

	return model.PRRef{Owner: segs[1], Repo: segs[2], Number: number}, true
}

func pathSegments(p string) []string {
	trimmed := strings.Trim(p, "/")
	if trimmed == "" {
		return nil
	}
	return strings.Split(trimmed, "/")
}

// parseNumber parses a non-negative integer literal: digits only, no sign,
// no surrounding whitespace.
func parseNumber(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return n, true
}

func containsSpace(s string) bool {
	return strings.ContainsFunc(s, unicode.IsSpace)
}
