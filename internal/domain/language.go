package domain

import (
	"strings"
	"unicode"
)

// LanguageCode is a BCP 47 style tag such as "en", "de" or "zh-Hans".
type LanguageCode string

func (c LanguageCode) String() string { return string(c) }

// Base returns the primary language subtag ("zh" for "zh-Hans").
func (c LanguageCode) Base() string {
	s := strings.ToLower(string(c))
	if i := strings.IndexAny(s, "-_"); i >= 0 {
		return s[:i]
	}
	return s
}

// ParseLanguageCode trims the raw value and checks that it looks like a
// language tag: letters, digits, '-' or '_', starting with a letter.
func ParseLanguageCode(field, raw string) (LanguageCode, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", NewValidationError(field, "required")
	}
	if len(raw) > 35 {
		return "", NewValidationError(field, "too long")
	}
	for i, r := range raw {
		switch {
		case i == 0 && !unicode.IsLetter(r):
			return "", NewValidationError(field, "must start with a letter")
		case r > unicode.MaxASCII:
			return "", NewValidationError(field, "must be ASCII")
		case unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '_':
		default:
			return "", NewValidationError(field, "invalid character")
		}
	}
	return LanguageCode(raw), nil
}

// LanguagePair is the source/target combination a translation session is
// bound to. Equality is structural.
type LanguagePair struct {
	Source LanguageCode
	Target LanguageCode
}

// NewLanguagePair validates both codes and builds a pair.
func NewLanguagePair(source, target string) (LanguagePair, error) {
	var errs []FieldError

	src, err := ParseLanguageCode("source", source)
	if ve, ok := err.(*ValidationError); ok {
		errs = append(errs, ve.Errors...)
	}
	dst, err := ParseLanguageCode("target", target)
	if ve, ok := err.(*ValidationError); ok {
		errs = append(errs, ve.Errors...)
	}
	if len(errs) > 0 {
		return LanguagePair{}, NewValidationErrors(errs)
	}
	return LanguagePair{Source: src, Target: dst}, nil
}

// IsZero reports whether the pair was never set.
func (p LanguagePair) IsZero() bool {
	return p.Source == "" && p.Target == ""
}

// SameLanguage reports whether source and target are the same tag, ignoring
// case and the '-'/'_' separator. Script or region variants ("zh-Hans" and
// "zh-Hant") are different languages; the availability oracle decides
// whether they can be translated.
func (p LanguagePair) SameLanguage() bool {
	return strings.EqualFold(p.Source.canonical(), p.Target.canonical())
}

func (c LanguageCode) canonical() string {
	return strings.ReplaceAll(string(c), "_", "-")
}

func (p LanguagePair) String() string {
	return string(p.Source) + "->" + string(p.Target)
}

// Availability is the answer of the language availability oracle for a pair.
type Availability string

const (
	AvailabilityInstalled   Availability = "installed"
	AvailabilitySupported   Availability = "supported"
	AvailabilityUnsupported Availability = "unsupported"
)

func (a Availability) String() string { return string(a) }

func (a Availability) IsValid() bool {
	switch a {
	case AvailabilityInstalled, AvailabilitySupported, AvailabilityUnsupported:
		return true
	}
	return false
}
