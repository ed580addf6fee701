package directory

import (
	"context"
	"database/sql"
	"fmt"

	"frontdesk-workers/internal/common/config"
	"frontdesk-workers/internal/common/errors"
)

// Default returns the built-in Brain Station 23 reference data.
func Default() *Directory {
	d, err := New(
		map[string]string{
			TopicServices: "Brain Station 23 offers software development, mobile app development, web development, AI/ML solutions, and digital transformation services.",
			TopicLocation: "Brain Station 23 is located in Dhaka, Bangladesh. Main office: Plot 15, Block B, Bashundhara R/A, Dhaka 1229.",
			TopicContact:  "Phone: +880-2-8401010, Email: info@brainstation-23.com",
			TopicHours:    "Working hours: Sunday to Thursday, 9:00 AM to 6:00 PM",
		},
		[]Employee{
			{Key: "john doe", Name: "John Doe", Title: "Senior Developer", Department: "Engineering", Email: "john.doe@brainstation-23.com"},
			{Key: "jane smith", Name: "Jane Smith", Title: "Project Manager", Department: "Operations", Email: "jane.smith@brainstation-23.com"},
			{Key: "ahmed hassan", Name: "Ahmed Hassan", Title: "HR Manager", Department: "Human Resources", Email: "ahmed.hassan@brainstation-23.com"},
		},
		[]JobCategory{
			{Category: "developer", Positions: []string{"Senior Software Engineer", "Frontend Developer", "Backend Developer", "Full Stack Developer"}},
			{Category: "manager", Positions: []string{"Project Manager", "Product Manager", "Team Lead"}},
			{Category: "designer", Positions: []string{"UI/UX Designer", "Graphic Designer"}},
		},
	)
	if err != nil {
		panic(err)
	}
	return d
}

// FromConfig builds a directory from the YAML directory section.
func FromConfig(cfg config.DirectoryConfig) (*Directory, error) {
	employees := make([]Employee, 0, len(cfg.Employees))
	for _, e := range cfg.Employees {
		employees = append(employees, Employee{
			Key:        e.Key,
			Name:       e.Name,
			Title:      e.Title,
			Department: e.Department,
			Email:      e.Email,
		})
	}
	jobs := make([]JobCategory, 0, len(cfg.Jobs))
	for _, j := range cfg.Jobs {
		jobs = append(jobs, JobCategory{Category: j.Category, Positions: j.Positions})
	}

	d, err := New(cfg.Company, employees, jobs)
	if err != nil {
		return nil, errors.NewDirectoryLoadFailedError(config.DirectorySourceConfig, err)
	}
	return d, nil
}

const (
	companyQuery   = `SELECT topic, content FROM company_info`
	employeesQuery = `SELECT key, name, title, department, email FROM employees ORDER BY sort_order, key`
	jobsQuery      = `SELECT category, title FROM job_positions ORDER BY category_order, sort_order`
)

// LoadPostgres reads the company_info, employees and job_positions tables.
func LoadPostgres(ctx context.Context, db *sql.DB) (*Directory, error) {
	company, err := loadCompany(ctx, db)
	if err != nil {
		return nil, errors.NewDirectoryLoadFailedError(config.DirectorySourcePostgres, err)
	}
	employees, err := loadEmployees(ctx, db)
	if err != nil {
		return nil, errors.NewDirectoryLoadFailedError(config.DirectorySourcePostgres, err)
	}
	jobs, err := loadJobs(ctx, db)
	if err != nil {
		return nil, errors.NewDirectoryLoadFailedError(config.DirectorySourcePostgres, err)
	}

	d, err := New(company, employees, jobs)
	if err != nil {
		return nil, errors.NewDirectoryLoadFailedError(config.DirectorySourcePostgres, err)
	}
	return d, nil
}

func loadCompany(ctx context.Context, db *sql.DB) (map[string]string, error) {
	rows, err := db.QueryContext(ctx, companyQuery)
	if err != nil {
		return nil, fmt.Errorf("query company_info: %w", err)
	}
	defer rows.Close()

	company := make(map[string]string)
	for rows.Next() {
		var topic, content string
		if err := rows.Scan(&topic, &content); err != nil {
			return nil, fmt.Errorf("scan company_info: %w", err)
		}
		company[topic] = content
	}
	return company, rows.Err()
}

func loadEmployees(ctx context.Context, db *sql.DB) ([]Employee, error) {
	rows, err := db.QueryContext(ctx, employeesQuery)
	if err != nil {
		return nil, fmt.Errorf("query employees: %w", err)
	}
	defer rows.Close()

	var employees []Employee
	for rows.Next() {
		var e Employee
		if err := rows.Scan(&e.Key, &e.Name, &e.Title, &e.Department, &e.Email); err != nil {
			return nil, fmt.Errorf("scan employees: %w", err)
		}
		employees = append(employees, e)
	}
	return employees, rows.Err()
}

func loadJobs(ctx context.Context, db *sql.DB) ([]JobCategory, error) {
	rows, err := db.QueryContext(ctx, jobsQuery)
	if err != nil {
		return nil, fmt.Errorf("query job_positions: %w", err)
	}
	defer rows.Close()

	var jobs []JobCategory
	index := make(map[string]int)
	for rows.Next() {
		var category, title string
		if err := rows.Scan(&category, &title); err != nil {
			return nil, fmt.Errorf("scan job_positions: %w", err)
		}
		i, ok := index[category]
		if !ok {
			i = len(jobs)
			index[category] = i
			jobs = append(jobs, JobCategory{Category: category})
		}
		jobs[i].Positions = append(jobs[i].Positions, title)
	}
	return jobs, rows.Err()
}

// Load picks the source named by cfg.Source. db is only used for the postgres source.
func Load(ctx context.Context, cfg config.DirectoryConfig, db *sql.DB) (*Directory, error) {
	switch cfg.Source {
	case "", config.DirectorySourceDefaults:
		return Default(), nil
	case config.DirectorySourceConfig:
		return FromConfig(cfg)
	case config.DirectorySourcePostgres:
		if db == nil {
			return nil, errors.NewDirectoryLoadFailedError(cfg.Source, fmt.Errorf("postgres is not enabled"))
		}
		return LoadPostgres(ctx, db)
	default:
		return nil, errors.NewDirectoryLoadFailedError(cfg.Source, fmt.Errorf("unknown directory source"))
	}
}
