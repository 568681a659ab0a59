package aidraft

import (
	"regexp"
	"strings"
)

var (
	positionRe    = regexp.MustCompile(`(?im)^\s*job title:[ \t]*(.*)$`)
	companyRe     = regexp.MustCompile(`(?im)^\s*company:[ \t]*(.*)$`)
	startDateRe   = regexp.MustCompile(`(?im)^\s*start date:[ \t]*(\d{4}-\d{2}-\d{2})\b`)
	endDateRe     = regexp.MustCompile(`(?im)^\s*end date:[ \t]*(\d{4}-\d{2}-\d{2})\b`)
	descriptionRe = regexp.MustCompile(`(?is)description:(.*)`)
)

// ParseWorkExperience extracts a WorkExperience from the model's labelled
// reply. Labels are matched case-insensitively; fields that are missing or
// malformed stay empty instead of failing the whole draft.
func ParseWorkExperience(text string) WorkExperience {
	return WorkExperience{
		Position:    firstGroup(positionRe, text),
		Company:     firstGroup(companyRe, text),
		StartDate:   firstGroup(startDateRe, text),
		EndDate:     firstGroup(endDateRe, text),
		Description: firstGroup(descriptionRe, text),
	}
}

func firstGroup(re *regexp.Regexp, text string) string {
	m := re.FindStringSubmatch(text)
	if len(m) < 2 {
		return ""
	}
	return strings.TrimSpace(m[1])
}
