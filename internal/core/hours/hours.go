// Package hours converts spoken durations ("a couple hours", "2 days", "half day") to hours
package hours

import (
	"regexp"
	"strconv"
	"strings"
)

// HoursPerDay is the length of a working day
const HoursPerDay = 8

var words = map[string]float64{
	"a": 1, "an": 1, "one": 1, "two": 2, "three": 3, "four": 4, "five": 5, "six": 6,
	"seven": 7, "eight": 8, "nine": 9, "ten": 10, "eleven": 11, "twelve": 12,
	"thirteen": 13, "fourteen": 14, "fifteen": 15, "sixteen": 16, "seventeen": 17,
	"eighteen": 18, "nineteen": 19, "twenty": 20, "couple": 2, "few": 3, "several": 3,
}

var (
	numUnit  = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*(hours?|hrs?|h|days?|d)\b`)
	wordUnit = regexp.MustCompile(`\b([a-z]+)(?:\s+of)?\s+(hours?|hrs?|days?)\b`)
	bareNum  = regexp.MustCompile(`\d+(?:\.\d+)?`)
)

// Parse returns the number of hours in s, or 0 when nothing is recognizable.
// Numbers with hour units are taken as is and days count 8 hours. Number words
// ("a", "couple", "few", "one" to "twenty") count as their value. "half day",
// "morning" and "afternoon" are 4 hours, "full day" is 8. Otherwise the first bare
// number found is returned
func Parse(s string) float64 {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return 0
	}

	switch {
	case strings.Contains(s, "half day"), strings.Contains(s, "half a day"), strings.Contains(s, "half-day"):
		return HoursPerDay / 2
	case strings.Contains(s, "full day"), strings.Contains(s, "whole day"), strings.Contains(s, "all day"):
		return HoursPerDay
	}

	if m := numUnit.FindStringSubmatch(s); m != nil {
		n, err := strconv.ParseFloat(m[1], 64)
		if err == nil {
			return scale(n, m[2])
		}
	}

	for _, m := range wordUnit.FindAllStringSubmatch(s, -1) {
		if n, ok := words[m[1]]; ok {
			return scale(n, m[2])
		}
	}

	if strings.Contains(s, "morning") || strings.Contains(s, "afternoon") {
		return HoursPerDay / 2
	}

	if m := bareNum.FindString(s); m != "" {
		if n, err := strconv.ParseFloat(m, 64); err == nil {
			return n
		}
	}
	return 0
}

func scale(n float64, unit string) float64 {
	if strings.HasPrefix(unit, "d") {
		return n * HoursPerDay
	}
	return n
}
