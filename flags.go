package main

import (
	"strings"

	"gopkg.in/alecthomas/kingpin.v2"
)

const listDelimiter = ","

// methodListValue collects method names from repeated flags and comma
// separated lists: `-m logistic -m svm` and `-m logistic,svm` are equivalent.
type methodListValue []string

// Set implements kingpin.Value.
func (s *methodListValue) Set(value string) error {
	for _, name := range strings.Split(value, listDelimiter) {
		if name = strings.TrimSpace(name); name != "" {
			*s = append(*s, name)
		}
	}
	return nil
}

func (s *methodListValue) String() string {
	return strings.Join(*s, listDelimiter)
}

// Get implements kingpin.Getter.
func (s *methodListValue) Get() interface{} {
	return []string(*s)
}

// IsCumulative marks the flag as repeatable.
func (s *methodListValue) IsCumulative() bool {
	return true
}

func methodListVar(settings kingpin.Settings, target *[]string) {
	settings.SetValue((*methodListValue)(target))
}
