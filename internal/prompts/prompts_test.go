package prompts

import (
	"testing"

	"frontdesk-workers/internal/intent"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testParams() Params {
	return Params{
		CompanyName:   "Brain Station 23",
		AssistantName: "Sabnam",
		Greeting:      "Thank you for calling Brain Station 23. This is Sabnam, how may I help you today?",
		CareersEmail:  "careers@brainstation-23.com",
		Routing: AdminRouting{
			Finance:    "finance@brainstation-23.com",
			Compliance: "legal@brainstation-23.com",
			General:    "admin@brainstation-23.com",
		},
	}
}

func TestRouteAdmin(t *testing.T) {
	routing := testParams().Routing

	tests := []struct {
		utterance string
		dept      Department
		address   string
	}{
		{"I have a question about my Billing statement", DepartmentFinance, "finance@brainstation-23.com"},
		{"Who handles finance?", DepartmentFinance, "finance@brainstation-23.com"},
		{"This is a legal matter", DepartmentCompliance, "legal@brainstation-23.com"},
		{"We need a compliance certificate", DepartmentCompliance, "legal@brainstation-23.com"},
		{"billing and legal both", DepartmentFinance, "finance@brainstation-23.com"},
		{"I need an office access card", DepartmentGeneral, "admin@brainstation-23.com"},
	}

	for _, tt := range tests {
		t.Run(tt.utterance, func(t *testing.T) {
			dept, addr := RouteAdmin(tt.utterance, routing)
			assert.Equal(t, tt.dept, dept)
			assert.Equal(t, tt.address, addr)
		})
	}
}

func TestBook_Instruction(t *testing.T) {
	book, err := NewBook(testParams())
	require.NoError(t, err)

	for _, h := range intent.Handlers() {
		t.Run(string(h), func(t *testing.T) {
			p, err := book.Instruction(h, "hello")
			require.NoError(t, err)
			assert.Contains(t, p.Text, "Brain Station 23")
			assert.Contains(t, p.Text, "Message history is attached for context.")
			assert.NotContains(t, p.Text, "{{")
		})
	}
}

func TestBook_InstructionSpecifics(t *testing.T) {
	book, err := NewBook(testParams())
	require.NoError(t, err)

	job, err := book.Instruction(intent.HandlerJob, "")
	require.NoError(t, err)
	assert.Contains(t, job.Text, "Direct to careers@brainstation-23.com for formal applications")
	assert.Empty(t, job.RoutedTo)

	employee, err := book.Instruction(intent.HandlerEmployee, "")
	require.NoError(t, err)
	assert.Contains(t, employee.Text, "SECURITY PROTOCOL")

	general, err := book.Instruction(intent.HandlerGeneral, "")
	require.NoError(t, err)
	assert.Contains(t, general.Text, "You are Sabnam")

	admin, err := book.Instruction(intent.HandlerAdmin, "I have a billing question")
	require.NoError(t, err)
	assert.Equal(t, DepartmentFinance, admin.Department)
	assert.Equal(t, "finance@brainstation-23.com", admin.RoutedTo)
	assert.Contains(t, admin.Text, "routed to the Finance/Billing team at finance@brainstation-23.com")
	assert.Contains(t, admin.Text, "Compliance/Legal: Route to legal@brainstation-23.com")
}

func TestBook_UnknownHandler(t *testing.T) {
	book, err := NewBook(testParams())
	require.NoError(t, err)

	_, err = book.Instruction(intent.Handler("sales_specialist"), "")
	assert.Error(t, err)
}
