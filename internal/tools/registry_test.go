package tools

import (
	"context"
	"testing"

	"frontdesk-workers/internal/common/errors"
	"frontdesk-workers/internal/common/logger"
	"frontdesk-workers/internal/directory"
	"frontdesk-workers/internal/intent"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRegistry(t *testing.T) *Registry {
	t.Helper()
	log := logger.NewTestLogger(t)
	r, err := NewStandardRegistry(NewLookup(directory.Default()), NewCommunicator(NewLogMailer(log), log), log)
	require.NoError(t, err)
	return r
}

func TestForHandler_AllToolsRegistered(t *testing.T) {
	r := newTestRegistry(t)

	for _, h := range intent.Handlers() {
		t.Run(string(h), func(t *testing.T) {
			set, err := r.Set(ForHandler(h)...)
			require.NoError(t, err)
			assert.Equal(t, ForHandler(h), set.Names())
		})
	}
	assert.Empty(t, ForHandler(intent.HandlerGeneral))
	assert.Len(t, r.Names(), 8)
}

func TestSet_Tools(t *testing.T) {
	set, err := newTestRegistry(t).Set(ForHandler(intent.HandlerEmployee)...)
	require.NoError(t, err)

	tools := set.Tools()
	require.Len(t, tools, 3)
	assert.Equal(t, ToolSearchEmployee, tools[0].Name)
	assert.Equal(t, []string{"employee_name"}, tools[0].Parameters["required"])
}

func TestSet_Call(t *testing.T) {
	r := newTestRegistry(t)
	set, err := r.Set(ForHandler(intent.HandlerJob)...)
	require.NoError(t, err)

	tests := []struct {
		name    string
		tool    string
		args    string
		want    string
		errCode errors.ErrorCode
	}{
		{
			name: "positions for category",
			tool: ToolAvailablePositions,
			args: `{"job_type":"developer"}`,
			want: "Available developer positions: Senior Software Engineer, Frontend Developer, Backend Developer, Full Stack Developer",
		},
		{
			name: "empty arguments use fallback",
			tool: ToolAvailablePositions,
			args: "",
			want: "Available positions: Senior Software Engineer, Frontend Developer, Project Manager, Product Manager, UI/UX Designer",
		},
		{
			name: "send email",
			tool: ToolSendEmail,
			args: `{"subject":"Application","message":"CV attached","to_email":"careers@brainstation-23.com"}`,
			want: EmailSent,
		},
		{
			name:    "missing required argument",
			tool:    ToolSendEmail,
			args:    `{"subject":"Application"}`,
			errCode: errors.ErrCodeToolArgumentsInvalid,
		},
		{
			name:    "invalid email format",
			tool:    ToolSendEmail,
			args:    `{"subject":"a","message":"b","to_email":"not-an-address"}`,
			errCode: errors.ErrCodeToolArgumentsInvalid,
		},
		{
			name:    "wrong argument type",
			tool:    ToolAvailablePositions,
			args:    `{"job_type":42}`,
			errCode: errors.ErrCodeToolArgumentsInvalid,
		},
		{
			name:    "malformed json",
			tool:    ToolAvailablePositions,
			args:    `{"job_type":`,
			errCode: errors.ErrCodeToolArgumentsInvalid,
		},
		{
			name:    "tool outside the set",
			tool:    ToolSearchEmployee,
			args:    `{"employee_name":"John"}`,
			errCode: errors.ErrCodeUnknownTool,
		},
		{
			name:    "unregistered tool",
			tool:    "transfer_call",
			args:    `{}`,
			errCode: errors.ErrCodeUnknownTool,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := set.Call(context.Background(), tt.tool, tt.args)
			if tt.errCode != "" {
				require.Error(t, err)
				assert.True(t, errors.HasCode(err, tt.errCode), "got %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, out)
		})
	}
}

func TestSet_CompanyTools(t *testing.T) {
	set, err := newTestRegistry(t).Set(ForHandler(intent.HandlerCompany)...)
	require.NoError(t, err)

	for _, tool := range []string{ToolCompanyServices, ToolCompanyLocation, ToolCompanyContact, ToolCompanyHours} {
		out, err := set.Call(context.Background(), tool, `{"query":"tell me"}`)
		require.NoError(t, err)
		assert.NotEqual(t, InfoNotAvailable, out)
	}

	out, err := set.Call(context.Background(), ToolCompanyHours, `{}`)
	require.NoError(t, err)
	assert.Equal(t, "Working hours: Sunday to Thursday, 9:00 AM to 6:00 PM", out)
}

func TestRegistry_Errors(t *testing.T) {
	log := logger.NewNoOpLogger()

	_, err := NewRegistry(log,
		Definition{Name: "a", Parameters: objectSchema(map[string]interface{}{})},
		Definition{Name: "a", Parameters: objectSchema(map[string]interface{}{})},
	)
	assert.Error(t, err)

	r, err := NewRegistry(log, Definition{Name: "a", Parameters: objectSchema(map[string]interface{}{})})
	require.NoError(t, err)
	_, err = r.Set("a", "b")
	assert.True(t, errors.HasCode(err, errors.ErrCodeUnknownTool))
}
