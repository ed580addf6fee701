package tools

import (
	"context"

	"frontdesk-workers/internal/common/logger"
	"frontdesk-workers/internal/directory"
	"frontdesk-workers/internal/intent"
)

const (
	ToolCompanyServices    = "get_company_services"
	ToolCompanyLocation    = "get_company_location"
	ToolCompanyContact     = "get_company_contact"
	ToolCompanyHours       = "get_company_hours"
	ToolSearchEmployee     = "search_employee"
	ToolAvailablePositions = "get_available_positions"
	ToolSendEmail          = "send_email"
	ToolCollectCallerInfo  = "collect_caller_info"
)

// handlerTools is the tool set bound to each specialist.
var handlerTools = map[intent.Handler][]string{
	intent.HandlerCompany:  {ToolCompanyServices, ToolCompanyLocation, ToolCompanyContact, ToolCompanyHours},
	intent.HandlerEmployee: {ToolSearchEmployee, ToolSendEmail, ToolCollectCallerInfo},
	intent.HandlerProject:  {ToolSendEmail, ToolCollectCallerInfo, ToolCompanyServices},
	intent.HandlerJob:      {ToolAvailablePositions, ToolSendEmail, ToolCollectCallerInfo},
	intent.HandlerAdmin:    {ToolSendEmail, ToolCollectCallerInfo},
	intent.HandlerGeneral:  nil,
}

// ForHandler returns the tool names bound to h.
func ForHandler(h intent.Handler) []string {
	return append([]string(nil), handlerTools[h]...)
}

func stringProperty(description string) map[string]interface{} {
	return map[string]interface{}{"type": "string", "description": description}
}

func objectSchema(properties map[string]interface{}, required ...string) map[string]interface{} {
	schema := map[string]interface{}{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}

func companyTool(name, topic, description string, lookup *Lookup) Definition {
	return Definition{
		Name:        name,
		Description: description,
		Parameters: objectSchema(map[string]interface{}{
			"query": stringProperty("The caller's question"),
		}),
		Invoke: func(ctx context.Context, args map[string]interface{}) string {
			return lookup.CompanyInfo(topic)
		},
	}
}

// Definitions returns every tool backed by lookup and comm.
func Definitions(lookup *Lookup, comm *Communicator) []Definition {
	return []Definition{
		companyTool(ToolCompanyServices, directory.TopicServices, "Get information about Brain Station 23 services.", lookup),
		companyTool(ToolCompanyLocation, directory.TopicLocation, "Get Brain Station 23 location and address information.", lookup),
		companyTool(ToolCompanyContact, directory.TopicContact, "Get Brain Station 23 contact information.", lookup),
		companyTool(ToolCompanyHours, directory.TopicHours, "Get Brain Station 23 working hours.", lookup),
		{
			Name:        ToolSearchEmployee,
			Description: "Search for employee information by name.",
			Parameters: objectSchema(map[string]interface{}{
				"employee_name": stringProperty("Full or partial name of the employee"),
			}, "employee_name"),
			Invoke: func(ctx context.Context, args map[string]interface{}) string {
				return lookup.SearchEmployee(stringArg(args, "employee_name"))
			},
		},
		{
			Name:        ToolAvailablePositions,
			Description: "Get available job positions at Brain Station 23.",
			Parameters: objectSchema(map[string]interface{}{
				"job_type": stringProperty("Kind of role, e.g. developer, manager or designer"),
			}),
			Invoke: func(ctx context.Context, args map[string]interface{}) string {
				return lookup.AvailablePositions(stringArg(args, "job_type"))
			},
		},
		{
			Name:        ToolSendEmail,
			Description: "Send email to specified recipient.",
			Parameters: objectSchema(map[string]interface{}{
				"subject": stringProperty("Email subject"),
				"message": stringProperty("Email body"),
				"to_email": map[string]interface{}{
					"type":        "string",
					"format":      "email",
					"description": "Recipient email address",
				},
			}, "subject", "message", "to_email"),
			Invoke: func(ctx context.Context, args map[string]interface{}) string {
				return comm.SendEmail(ctx, stringArg(args, "subject"), stringArg(args, "message"), stringArg(args, "to_email"))
			},
		},
		{
			Name:        ToolCollectCallerInfo,
			Description: "Collect and store caller information.",
			Parameters: objectSchema(map[string]interface{}{
				"name":    stringProperty("Caller's name"),
				"email":   stringProperty("Caller's email address"),
				"phone":   stringProperty("Caller's phone number"),
				"purpose": stringProperty("Purpose of the call"),
			}, "name", "email"),
			Invoke: func(ctx context.Context, args map[string]interface{}) string {
				return comm.CollectCallerInfo(ctx,
					stringArg(args, "name"),
					stringArg(args, "email"),
					stringArg(args, "phone"),
					stringArg(args, "purpose"),
				)
			},
		},
	}
}

// NewStandardRegistry registers Definitions(lookup, comm).
func NewStandardRegistry(lookup *Lookup, comm *Communicator, log logger.Logger) (*Registry, error) {
	return NewRegistry(log, Definitions(lookup, comm)...)
}
