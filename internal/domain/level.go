package domain

import (
	"fmt"
	"strings"
)

// Seniority is an ordered career level. Higher value means more senior.
type Seniority int

// Seniority levels, ordered.
const (
	SeniorityUnknown Seniority = iota
	SeniorityIntern
	SeniorityJunior
	SeniorityMid
	SenioritySenior
	SeniorityLead
	SeniorityPrincipal
)

var seniorityNames = map[Seniority]string{
	SeniorityUnknown:   "unknown",
	SeniorityIntern:    "intern",
	SeniorityJunior:    "junior",
	SeniorityMid:       "mid",
	SenioritySenior:    "senior",
	SeniorityLead:      "lead",
	SeniorityPrincipal: "principal",
}

func (s Seniority) String() string {
	if name, ok := seniorityNames[s]; ok {
		return name
	}
	return "unknown"
}

// ParseSeniority maps a level name to a Seniority. Unknown names fail.
func ParseSeniority(s string) (Seniority, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "intern", "internship":
		return SeniorityIntern, nil
	case "junior", "jr", "entry", "entry-level":
		return SeniorityJunior, nil
	case "mid", "middle", "mid-level", "intermediate":
		return SeniorityMid, nil
	case "senior", "sr":
		return SenioritySenior, nil
	case "lead", "staff", "team lead":
		return SeniorityLead, nil
	case "principal", "architect", "distinguished":
		return SeniorityPrincipal, nil
	case "", "unknown":
		return SeniorityUnknown, nil
	default:
		return SeniorityUnknown, fmt.Errorf("unknown seniority %q: %w", s, ErrValidation)
	}
}

// InferSeniority derives a career level from a job title.
// Keyword scan, most senior keyword wins; titles without a level keyword map to mid.
func InferSeniority(title string) Seniority {
	t := strings.ToLower(title)
	switch {
	case strings.Contains(t, "principal") || strings.Contains(t, "distinguished") || strings.Contains(t, "architect"):
		return SeniorityPrincipal
	case strings.Contains(t, "staff") || strings.Contains(t, "lead") || strings.Contains(t, "head of"):
		return SeniorityLead
	case strings.Contains(t, "senior") || strings.Contains(t, "sr.") || strings.Contains(t, "sr "):
		return SenioritySenior
	case strings.Contains(t, "junior") || strings.Contains(t, "jr.") || strings.Contains(t, "jr "):
		return SeniorityJunior
	case strings.Contains(t, "intern") && !strings.Contains(t, "international"):
		return SeniorityIntern
	default:
		return SeniorityMid
	}
}

// EducationLevel is an ordered degree level.
type EducationLevel int

// Education levels, ordered.
const (
	EducationNone EducationLevel = iota
	EducationHighSchool
	EducationAssociate
	EducationBachelor
	EducationMaster
	EducationDoctorate
)

var educationNames = map[EducationLevel]string{
	EducationNone:       "none",
	EducationHighSchool: "high_school",
	EducationAssociate:  "associate",
	EducationBachelor:   "bachelor",
	EducationMaster:     "master",
	EducationDoctorate:  "doctorate",
}

func (l EducationLevel) String() string {
	if name, ok := educationNames[l]; ok {
		return name
	}
	return "none"
}

// ParseEducationLevel maps a degree name to an EducationLevel. Unknown names fail.
func ParseEducationLevel(s string) (EducationLevel, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return EducationNone, nil
	case "high_school", "high school", "highschool", "secondary":
		return EducationHighSchool, nil
	case "associate", "associates", "diploma":
		return EducationAssociate, nil
	case "bachelor", "bachelors", "bsc", "ba", "bs", "undergraduate":
		return EducationBachelor, nil
	case "master", "masters", "msc", "ma", "ms", "mba":
		return EducationMaster, nil
	case "doctorate", "phd", "doctoral", "doctor":
		return EducationDoctorate, nil
	default:
		return EducationNone, fmt.Errorf("unknown education level %q: %w", s, ErrValidation)
	}
}
