// Package tools implements the functions specialists expose to the language model.
package tools

import (
	"strings"

	"frontdesk-workers/internal/directory"
)

const (
	InfoNotAvailable    = "Information not available."
	EmployeeNotFound    = "Employee not found in our directory."
	fallbackPerCategory = 2
	fallbackTotal       = 5
)

// Lookup answers read-only questions from the directory. Every method is a pure function of its
// input and the directory it was built with.
type Lookup struct {
	dir *directory.Directory
}

func NewLookup(dir *directory.Directory) *Lookup {
	return &Lookup{dir: dir}
}

// CompanyInfo returns the stored text for services, location, contact or hours.
func (l *Lookup) CompanyInfo(topic string) string {
	if text, ok := l.dir.Company(topic); ok {
		return text
	}
	return InfoNotAvailable
}

// SearchEmployee returns the first directory entry whose key appears in the query, or one of whose
// name parts is a whole word of the query.
func (l *Lookup) SearchEmployee(query string) string {
	q := strings.ToLower(query)
	words := make(map[string]bool)
	for _, w := range strings.FieldsFunc(q, isWordSeparator) {
		words[w] = true
	}

	for _, e := range l.dir.Employees() {
		if strings.Contains(q, e.Key) || anyPartMatches(e.Key, words) {
			return "Found: " + e.Name + ", " + e.Title + " in " + e.Department
		}
	}
	return EmployeeNotFound
}

func anyPartMatches(key string, words map[string]bool) bool {
	for _, part := range strings.Fields(key) {
		if words[part] {
			return true
		}
	}
	return false
}

func isWordSeparator(r rune) bool {
	return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9' || r > 127)
}

// AvailablePositions returns the positions of the first category named in jobType. An empty or
// unmatched jobType gets a short list drawn from every category.
func (l *Lookup) AvailablePositions(jobType string) string {
	jobs := l.dir.Jobs()

	if jt := strings.ToLower(jobType); jt != "" {
		for _, j := range jobs {
			if strings.Contains(jt, j.Category) {
				return "Available " + j.Category + " positions: " + strings.Join(j.Positions, ", ")
			}
		}
	}

	var sample []string
	for _, j := range jobs {
		n := len(j.Positions)
		if n > fallbackPerCategory {
			n = fallbackPerCategory
		}
		sample = append(sample, j.Positions[:n]...)
	}
	if len(sample) > fallbackTotal {
		sample = sample[:fallbackTotal]
	}
	return "Available positions: " + strings.Join(sample, ", ")
}
