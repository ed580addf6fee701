// Package directory holds the front desk's reference data: company facts, the employee directory and
// the job catalog. A Directory is built once at startup and never mutated afterwards.
package directory

import (
	"errors"
	"fmt"
	"strings"
)

const (
	TopicServices = "services"
	TopicLocation = "location"
	TopicContact  = "contact"
	TopicHours    = "hours"
)

// Topics lists the company topics in the order tools are registered.
var Topics = []string{TopicServices, TopicLocation, TopicContact, TopicHours}

var (
	ErrEmptyKey      = errors.New("empty key")
	ErrDuplicateKey  = errors.New("duplicate key")
	ErrEmptyCategory = errors.New("empty job category")
)

type Employee struct {
	Key        string `json:"key"`
	Name       string `json:"name"`
	Title      string `json:"title"`
	Department string `json:"department"`
	Email      string `json:"email"`
}

type JobCategory struct {
	Category  string   `json:"category"`
	Positions []string `json:"positions"`
}

// Directory is immutable; accessors return copies.
type Directory struct {
	company   map[string]string
	employees []Employee
	jobs      []JobCategory
}

// New copies and validates the given data. Employee keys default to the lower-cased name.
func New(company map[string]string, employees []Employee, jobs []JobCategory) (*Directory, error) {
	d := &Directory{
		company:   make(map[string]string, len(company)),
		employees: make([]Employee, 0, len(employees)),
		jobs:      make([]JobCategory, 0, len(jobs)),
	}

	for topic, text := range company {
		d.company[strings.ToLower(strings.TrimSpace(topic))] = text
	}

	seen := make(map[string]bool, len(employees))
	for i, e := range employees {
		key := e.Key
		if key == "" {
			key = e.Name
		}
		key = normalize(key)
		if key == "" {
			return nil, fmt.Errorf("employee %d: %w", i, ErrEmptyKey)
		}
		if seen[key] {
			return nil, fmt.Errorf("employee %q: %w", key, ErrDuplicateKey)
		}
		seen[key] = true
		e.Key = key
		d.employees = append(d.employees, e)
	}

	seenCategory := make(map[string]bool, len(jobs))
	for i, j := range jobs {
		category := normalize(j.Category)
		if category == "" {
			return nil, fmt.Errorf("job category %d: %w", i, ErrEmptyCategory)
		}
		if seenCategory[category] {
			return nil, fmt.Errorf("job category %q: %w", category, ErrDuplicateKey)
		}
		seenCategory[category] = true
		d.jobs = append(d.jobs, JobCategory{
			Category:  category,
			Positions: append([]string(nil), j.Positions...),
		})
	}

	return d, nil
}

// Company returns the text stored for topic.
func (d *Directory) Company(topic string) (string, bool) {
	text, ok := d.company[strings.ToLower(strings.TrimSpace(topic))]
	return text, ok
}

func (d *Directory) Employees() []Employee {
	return append([]Employee(nil), d.employees...)
}

func (d *Directory) Jobs() []JobCategory {
	out := make([]JobCategory, len(d.jobs))
	for i, j := range d.jobs {
		out[i] = JobCategory{Category: j.Category, Positions: append([]string(nil), j.Positions...)}
	}
	return out
}

// Stats is logged at startup.
func (d *Directory) Stats() map[string]interface{} {
	positions := 0
	for _, j := range d.jobs {
		positions += len(j.Positions)
	}
	return map[string]interface{}{
		"companyTopics": len(d.company),
		"employees":     len(d.employees),
		"jobCategories": len(d.jobs),
		"positions":     positions,
	}
}

func normalize(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}
