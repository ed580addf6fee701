package directory

import (
	"context"
	stderrors "errors"
	"regexp"
	"testing"

	"frontdesk-workers/internal/common/config"
	"frontdesk-workers/internal/common/errors"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	d := Default()

	for _, topic := range Topics {
		text, ok := d.Company(topic)
		assert.True(t, ok, topic)
		assert.NotEmpty(t, text, topic)
	}

	employees := d.Employees()
	require.Len(t, employees, 3)
	assert.Equal(t, "john doe", employees[0].Key)
	assert.Equal(t, "jane smith", employees[1].Key)
	assert.Equal(t, "ahmed hassan", employees[2].Key)

	jobs := d.Jobs()
	require.Len(t, jobs, 3)
	assert.Equal(t, []string{"developer", "manager", "designer"}, []string{jobs[0].Category, jobs[1].Category, jobs[2].Category})
	assert.Len(t, jobs[0].Positions, 4)

	assert.Equal(t, 9, d.Stats()["positions"])
}

func TestDirectory_AccessorsReturnCopies(t *testing.T) {
	d := Default()

	jobs := d.Jobs()
	jobs[0].Positions[0] = "changed"
	employees := d.Employees()
	employees[0].Name = "changed"

	assert.Equal(t, "Senior Software Engineer", d.Jobs()[0].Positions[0])
	assert.Equal(t, "John Doe", d.Employees()[0].Name)
}

func TestNew_Validation(t *testing.T) {
	tests := []struct {
		name      string
		employees []Employee
		jobs      []JobCategory
		wantErr   error
	}{
		{
			name:      "duplicate employee key after normalisation",
			employees: []Employee{{Key: "John Doe", Name: "John Doe"}, {Key: "john  doe", Name: "J. Doe"}},
			wantErr:   ErrDuplicateKey,
		},
		{
			name:      "empty key and name",
			employees: []Employee{{Title: "Nobody"}},
			wantErr:   ErrEmptyKey,
		},
		{
			name:    "duplicate job category",
			jobs:    []JobCategory{{Category: "developer"}, {Category: "Developer"}},
			wantErr: ErrDuplicateKey,
		},
		{
			name:    "empty job category",
			jobs:    []JobCategory{{Category: " "}},
			wantErr: ErrEmptyCategory,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(nil, tt.employees, tt.jobs)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestNew_KeyDefaultsToName(t *testing.T) {
	d, err := New(nil, []Employee{{Name: "Rina Akter", Title: "QA Lead"}}, nil)
	require.NoError(t, err)
	assert.Equal(t, "rina akter", d.Employees()[0].Key)
}

func TestFromConfig(t *testing.T) {
	d, err := FromConfig(config.DirectoryConfig{
		Source:  config.DirectorySourceConfig,
		Company: map[string]string{"Hours": "Always open"},
		Employees: []config.EmployeeConfig{
			{Key: "rina akter", Name: "Rina Akter", Title: "QA Lead", Department: "Quality", Email: "rina@example.com"},
		},
		Jobs: []config.JobConfig{{Category: "tester", Positions: []string{"QA Engineer"}}},
	})
	require.NoError(t, err)

	hours, ok := d.Company("hours")
	assert.True(t, ok)
	assert.Equal(t, "Always open", hours)
	assert.Equal(t, "Quality", d.Employees()[0].Department)
	assert.Equal(t, "tester", d.Jobs()[0].Category)

	_, err = FromConfig(config.DirectoryConfig{
		Employees: []config.EmployeeConfig{{Name: "A"}, {Name: "a"}},
	})
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeDirectoryLoadFailed))
}

func TestLoadPostgres(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta(companyQuery)).
		WillReturnRows(sqlmock.NewRows([]string{"topic", "content"}).
			AddRow("services", "We build software.").
			AddRow("hours", "Sunday to Thursday"))
	mock.ExpectQuery(regexp.QuoteMeta(employeesQuery)).
		WillReturnRows(sqlmock.NewRows([]string{"key", "name", "title", "department", "email"}).
			AddRow("john doe", "John Doe", "Senior Developer", "Engineering", "john.doe@brainstation-23.com").
			AddRow("jane smith", "Jane Smith", "Project Manager", "Operations", "jane.smith@brainstation-23.com"))
	mock.ExpectQuery(regexp.QuoteMeta(jobsQuery)).
		WillReturnRows(sqlmock.NewRows([]string{"category", "title"}).
			AddRow("developer", "Backend Developer").
			AddRow("developer", "Frontend Developer").
			AddRow("designer", "UI/UX Designer"))

	d, err := LoadPostgres(context.Background(), db)
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())

	services, ok := d.Company("services")
	assert.True(t, ok)
	assert.Equal(t, "We build software.", services)
	assert.Len(t, d.Employees(), 2)

	jobs := d.Jobs()
	require.Len(t, jobs, 2)
	assert.Equal(t, "developer", jobs[0].Category)
	assert.Equal(t, []string{"Backend Developer", "Frontend Developer"}, jobs[0].Positions)
	assert.Equal(t, "designer", jobs[1].Category)
}

func TestLoadPostgres_QueryError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta(companyQuery)).WillReturnError(stderrors.New("relation \"company_info\" does not exist"))

	_, err = LoadPostgres(context.Background(), db)
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeDirectoryLoadFailed))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLoad_Sources(t *testing.T) {
	d, err := Load(context.Background(), config.DirectoryConfig{}, nil)
	require.NoError(t, err)
	assert.Len(t, d.Employees(), 3)

	_, err = Load(context.Background(), config.DirectoryConfig{Source: config.DirectorySourcePostgres}, nil)
	assert.True(t, errors.HasCode(err, errors.ErrCodeDirectoryLoadFailed))

	_, err = Load(context.Background(), config.DirectoryConfig{Source: "ldap"}, nil)
	assert.True(t, errors.HasCode(err, errors.ErrCodeDirectoryLoadFailed))
}
