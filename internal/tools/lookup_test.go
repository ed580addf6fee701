package tools

import (
	"testing"

	"frontdesk-workers/internal/directory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookup_CompanyInfo(t *testing.T) {
	l := NewLookup(directory.Default())

	tests := []struct {
		topic string
		want  string
	}{
		{"services", "Brain Station 23 offers software development, mobile app development, web development, AI/ML solutions, and digital transformation services."},
		{"location", "Brain Station 23 is located in Dhaka, Bangladesh. Main office: Plot 15, Block B, Bashundhara R/A, Dhaka 1229."},
		{"contact", "Phone: +880-2-8401010, Email: info@brainstation-23.com"},
		{"hours", "Working hours: Sunday to Thursday, 9:00 AM to 6:00 PM"},
		{"Hours", "Working hours: Sunday to Thursday, 9:00 AM to 6:00 PM"},
		{"pricing", InfoNotAvailable},
		{"", InfoNotAvailable},
	}

	for _, tt := range tests {
		t.Run(tt.topic, func(t *testing.T) {
			assert.Equal(t, tt.want, l.CompanyInfo(tt.topic))
		})
	}
}

func TestLookup_SearchEmployee(t *testing.T) {
	l := NewLookup(directory.Default())

	tests := []struct {
		name  string
		query string
		want  string
	}{
		{"contact scenario", "Can I get John Doe's contact?", "Found: John Doe, Senior Developer in Engineering"},
		{"exact key", "jane smith", "Found: Jane Smith, Project Manager in Operations"},
		{"upper case", "AHMED HASSAN", "Found: Ahmed Hassan, HR Manager in Human Resources"},
		{"first name only", "Is Jane available?", "Found: Jane Smith, Project Manager in Operations"},
		{"last name only", "Mr. Hassan please", "Found: Ahmed Hassan, HR Manager in Human Resources"},
		{"directory order wins", "john or jane", "Found: John Doe, Senior Developer in Engineering"},
		{"substring of a word is not a name", "Who does billing?", EmployeeNotFound},
		{"longer first name", "Is Johnny in today?", EmployeeNotFound},
		{"longer last name", "I need Mr. Smithson", EmployeeNotFound},
		{"unknown", "Rahim Uddin", EmployeeNotFound},
		{"empty", "", EmployeeNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, l.SearchEmployee(tt.query))
		})
	}
}

func TestLookup_AvailablePositions(t *testing.T) {
	l := NewLookup(directory.Default())

	tests := []struct {
		name    string
		jobType string
		want    string
	}{
		{"developer scenario", "I want to apply for a developer job", "Available developer positions: Senior Software Engineer, Frontend Developer, Backend Developer, Full Stack Developer"},
		{"known category", "manager", "Available manager positions: Project Manager, Product Manager, Team Lead"},
		{"case insensitive", "DESIGNER", "Available designer positions: UI/UX Designer, Graphic Designer"},
		{"empty falls back", "", "Available positions: Senior Software Engineer, Frontend Developer, Project Manager, Product Manager, UI/UX Designer"},
		{"unknown falls back", "accountant", "Available positions: Senior Software Engineer, Frontend Developer, Project Manager, Product Manager, UI/UX Designer"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, l.AvailablePositions(tt.jobType))
		})
	}
}

func TestLookup_FallbackWithSmallCatalog(t *testing.T) {
	dir, err := directory.New(nil, nil, []directory.JobCategory{
		{Category: "tester", Positions: []string{"QA Engineer"}},
		{Category: "analyst", Positions: []string{"Business Analyst", "Data Analyst", "Systems Analyst"}},
	})
	require.NoError(t, err)

	assert.Equal(t, "Available positions: QA Engineer, Business Analyst, Data Analyst", NewLookup(dir).AvailablePositions(""))
}

func TestLookup_Idempotent(t *testing.T) {
	l := NewLookup(directory.Default())

	for i := 0; i < 3; i++ {
		assert.Equal(t, l.SearchEmployee("john doe"), l.SearchEmployee("john doe"))
		assert.Equal(t, l.AvailablePositions(""), l.AvailablePositions(""))
		assert.Equal(t, l.AvailablePositions("developer"), l.AvailablePositions("developer"))
		assert.Equal(t, l.CompanyInfo("hours"), l.CompanyInfo("hours"))
	}
	assert.Equal(t, "Available positions: Senior Software Engineer, Frontend Developer, Project Manager, Product Manager, UI/UX Designer", l.AvailablePositions(""))
}
