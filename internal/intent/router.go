// Package intent classifies caller utterances and routes them to a specialist handler.
package intent

import (
	"strings"
)

// Category is the closed set of intents a turn can be classified into.
type Category string

const (
	CategoryEmployee     Category = "EMPLOYEE"
	CategoryCompany      Category = "COMPANY"
	CategoryProject      Category = "PROJECT"
	CategoryJob          Category = "JOB"
	CategoryAdmin        Category = "ADMIN"
	CategoryGeneral      Category = "GENERAL"
	CategoryUnrecognized Category = "UNRECOGNIZED"
)

// Categories lists the labels a classifier is expected to produce.
var Categories = []Category{
	CategoryEmployee,
	CategoryCompany,
	CategoryProject,
	CategoryJob,
	CategoryAdmin,
	CategoryGeneral,
}

// ParseCategory maps a raw label to a Category. Surrounding whitespace, quotes and a trailing period
// are ignored; anything else that is not an exact label is CategoryUnrecognized.
func ParseCategory(label string) Category {
	normalized := strings.ToUpper(strings.Trim(strings.TrimSpace(label), "\"'`."))
	for _, c := range Categories {
		if normalized == string(c) {
			return c
		}
	}
	return CategoryUnrecognized
}

// Handler identifies a specialist node.
type Handler string

const (
	HandlerEmployee Handler = "employee_specialist"
	HandlerCompany  Handler = "company_specialist"
	HandlerProject  Handler = "project_specialist"
	HandlerJob      Handler = "job_specialist"
	HandlerAdmin    Handler = "admin_specialist"
	HandlerGeneral  Handler = "general_receptionist"
)

var handlers = []Handler{
	HandlerEmployee,
	HandlerCompany,
	HandlerProject,
	HandlerJob,
	HandlerAdmin,
	HandlerGeneral,
}

// Handlers returns every handler in a stable order, general receptionist last.
func Handlers() []Handler {
	return append([]Handler(nil), handlers...)
}

// TaskType is the Zeebe job type of the handler's service task.
func (h Handler) TaskType() string {
	return strings.ReplaceAll(string(h), "_", "-")
}

// ParseHandler is the inverse of the string conversion.
func ParseHandler(s string) (Handler, bool) {
	for _, h := range handlers {
		if string(h) == s {
			return h, true
		}
	}
	return "", false
}

// Route maps a category to its handler. Unknown categories go to the general receptionist.
func Route(c Category) Handler {
	switch c {
	case CategoryEmployee:
		return HandlerEmployee
	case CategoryCompany:
		return HandlerCompany
	case CategoryProject:
		return HandlerProject
	case CategoryJob:
		return HandlerJob
	case CategoryAdmin:
		return HandlerAdmin
	default:
		return HandlerGeneral
	}
}
