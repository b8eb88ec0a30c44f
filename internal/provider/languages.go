// Package provider holds what the translation capability adapters share.
package provider

import (
	"strings"

	"github.com/yaoqiang/voxwords/internal/domain"
)

// LanguageSet is a set of primary language subtags a capability can handle.
// The zero value accepts every language.
type LanguageSet struct {
	codes map[string]struct{}
}

// NewLanguageSet builds a set from codes such as "en" or "zh-Hans"; only
// the primary subtag is kept.
func NewLanguageSet(codes []string) LanguageSet {
	set := LanguageSet{codes: make(map[string]struct{}, len(codes))}
	for _, c := range codes {
		base := domain.LanguageCode(strings.TrimSpace(c)).Base()
		if base != "" {
			set.codes[base] = struct{}{}
		}
	}
	return set
}

// Contains reports whether code's primary subtag is in the set.
func (s LanguageSet) Contains(code domain.LanguageCode) bool {
	if len(s.codes) == 0 {
		return true
	}
	_, ok := s.codes[code.Base()]
	return ok
}

// Availability is installed when both sides of pair are in the set and
// unsupported otherwise.
func (s LanguageSet) Availability(pair domain.LanguagePair) domain.Availability {
	if s.Contains(pair.Source) && s.Contains(pair.Target) {
		return domain.AvailabilityInstalled
	}
	return domain.AvailabilityUnsupported
}
