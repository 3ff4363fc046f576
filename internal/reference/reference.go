package reference

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/opencontainers/go-digest"
)

// ErrInvalid is wrapped by every parse failure so that callers can branch on
// the failure class without inspecting message text.
var ErrInvalid = errors.New("invalid image reference")

const (
	repositoryPattern = `^[a-zA-Z0-9]+(?:[._/-][a-zA-Z0-9]+)*$`
	tagPattern        = `^[a-zA-Z0-9_][a-zA-Z0-9._-]{0,127}$`
)

var (
	repositoryRegexp = regexp.MustCompile(repositoryPattern)
	tagRegexp        = regexp.MustCompile(tagPattern)
)

// Reference is a validated, normalized container image reference. It is
// constructed by Parse and immutable afterwards.
type Reference struct {
	Repository string
	Tag        string
	Digest     digest.Digest
}

// Parse validates raw and splits it into repository, tag, and digest
// components. Parsing is purely syntactic; no registry resolution happens
// here. A digest, when present, must be sha256 with exactly 64 lowercase hex
// characters.
func Parse(raw string) (Reference, error) {
	if raw == "" {
		return Reference{}, fmt.Errorf("%w: empty string", ErrInvalid)
	}

	rest := raw
	var ref Reference

	if name, digestPart, ok := strings.Cut(rest, "@"); ok {
		d, err := parseDigest(digestPart)
		if err != nil {
			return Reference{}, fmt.Errorf("%w: %q: %v", ErrInvalid, raw, err)
		}
		ref.Digest = d
		rest = name
	}

	// A colon after the last slash is a tag separator; earlier colons belong
	// to a registry host port, which the repository charset does not admit.
	if idx := strings.LastIndex(rest, ":"); idx > strings.LastIndex(rest, "/") {
		tag := rest[idx+1:]
		if !tagRegexp.MatchString(tag) {
			return Reference{}, fmt.Errorf("%w: %q: malformed tag %q", ErrInvalid, raw, tag)
		}
		ref.Tag = tag
		rest = rest[:idx]
	}

	if !repositoryRegexp.MatchString(rest) {
		return Reference{}, fmt.Errorf("%w: %q: repository %q contains characters outside [a-zA-Z0-9._/-]", ErrInvalid, raw, rest)
	}
	ref.Repository = rest

	return ref, nil
}

// ParseAll validates a slice of raw references, failing on the first invalid
// entry.
func ParseAll(raws []string) ([]Reference, error) {
	refs := make([]Reference, 0, len(raws))
	for _, raw := range raws {
		ref, err := Parse(raw)
		if err != nil {
			return nil, err
		}
		refs = append(refs, ref)
	}
	return refs, nil
}

func parseDigest(s string) (digest.Digest, error) {
	d, err := digest.Parse(s)
	if err != nil {
		return "", fmt.Errorf("malformed digest %q: %v", s, err)
	}
	if d.Algorithm() != digest.SHA256 {
		return "", fmt.Errorf("unsupported digest algorithm %q", d.Algorithm())
	}
	return d, nil
}

// Reproducible reports whether the reference pins exact content. A
// tag-only reference is accepted by Parse but resolves to whatever the tag
// happens to point at, so it cannot be used to reproduce a bundle byte for
// byte.
func (r Reference) Reproducible() bool {
	return r.Digest != ""
}

// String renders the reference in its canonical repo[:tag][@digest] form.
// Parse(r.String()) round-trips exactly.
func (r Reference) String() string {
	var sb strings.Builder
	sb.WriteString(r.Repository)
	if r.Tag != "" {
		sb.WriteString(":")
		sb.WriteString(r.Tag)
	}
	if r.Digest != "" {
		sb.WriteString("@")
		sb.WriteString(r.Digest.String())
	}
	return sb.String()
}

// Strings renders a slice of references.
func Strings(refs []Reference) []string {
	out := make([]string, 0, len(refs))
	for _, r := range refs {
		out = append(out, r.String())
	}
	return out
}
