package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Project struct {
	ID             string
	Name           string
	ClientName     string
	Location       *string
	PONumber       *string
	SalesOrderDate *time.Time
	Deadline       *time.Time
	Status         string
	ManagerID      *string
	CreatedBy      string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// ProjectMember is a person on the project team. Members are keyed by email because
// invited people may not have an account yet.
type ProjectMember struct {
	ID                   string
	ProjectID            string
	Name                 string
	Email                string
	Phone                *string
	Position             *string
	Role                 string
	Status               string
	EquipmentAssignments []string
	LastActive           *time.Time
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

type ProjectRepository interface {
	Create(ctx context.Context, project *Project) error
	FindByID(ctx context.Context, id string) (*Project, error)
	FindAll(ctx context.Context) ([]*Project, error)
	FindByMemberEmail(ctx context.Context, email string) ([]*Project, error)
	Update(ctx context.Context, project *Project) error
	Delete(ctx context.Context, id string) error

	// Member operations
	AddMember(ctx context.Context, member *ProjectMember) error
	FindMembers(ctx context.Context, projectID string) ([]*ProjectMember, error)
	FindMemberByID(ctx context.Context, memberID string) (*ProjectMember, error)
	FindMemberByEmail(ctx context.Context, projectID, email string) (*ProjectMember, error)
	UpdateMember(ctx context.Context, member *ProjectMember) error
	RemoveMember(ctx context.Context, memberID string) error
}

type pgProjectRepository struct {
	pool *pgxpool.Pool
}

func NewProjectRepository(pool *pgxpool.Pool) ProjectRepository {
	return &pgProjectRepository{pool: pool}
}

const projectColumns = `id, name, client_name, location, po_number, sales_order_date, deadline, status, manager_id, created_by, created_at, updated_at`

func scanProject(row pgx.Row) (*Project, error) {
	p := &Project{}
	err := row.Scan(
		&p.ID, &p.Name, &p.ClientName, &p.Location, &p.PONumber, &p.SalesOrderDate,
		&p.Deadline, &p.Status, &p.ManagerID, &p.CreatedBy, &p.CreatedAt, &p.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *pgProjectRepository) Create(ctx context.Context, project *Project) error {
	query := `
		INSERT INTO projects (name, client_name, location, po_number, sales_order_date, deadline, status, manager_id, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, updated_at
	`
	return r.pool.QueryRow(ctx, query,
		project.Name, project.ClientName, project.Location, project.PONumber,
		project.SalesOrderDate, project.Deadline, project.Status, project.ManagerID, project.CreatedBy,
	).Scan(&project.ID, &project.CreatedAt, &project.UpdatedAt)
}

func (r *pgProjectRepository) FindByID(ctx context.Context, id string) (*Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects WHERE id = $1`
	return scanProject(r.pool.QueryRow(ctx, query, id))
}

func (r *pgProjectRepository) FindAll(ctx context.Context) ([]*Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects ORDER BY created_at DESC`
	return r.queryProjects(ctx, query)
}

func (r *pgProjectRepository) FindByMemberEmail(ctx context.Context, email string) ([]*Project, error) {
	query := `
		SELECT p.id, p.name, p.client_name, p.location, p.po_number, p.sales_order_date, p.deadline,
		       p.status, p.manager_id, p.created_by, p.created_at, p.updated_at
		FROM projects p
		INNER JOIN project_members pm ON pm.project_id = p.id
		WHERE LOWER(pm.email) = LOWER(TRIM($1))
		ORDER BY p.created_at DESC
	`
	return r.queryProjects(ctx, query, email)
}

func (r *pgProjectRepository) queryProjects(ctx context.Context, query string, args ...interface{}) ([]*Project, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var projects []*Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

func (r *pgProjectRepository) Update(ctx context.Context, project *Project) error {
	query := `
		UPDATE projects
		SET name = $2, client_name = $3, location = $4, po_number = $5, sales_order_date = $6,
		    deadline = $7, status = $8, manager_id = $9, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`
	return r.pool.QueryRow(ctx, query,
		project.ID, project.Name, project.ClientName, project.Location, project.PONumber,
		project.SalesOrderDate, project.Deadline, project.Status, project.ManagerID,
	).Scan(&project.UpdatedAt)
}

func (r *pgProjectRepository) Delete(ctx context.Context, id string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM projects WHERE id = $1`, id)
	return err
}

// ============================================
// Members
// ============================================

const memberColumns = `id, project_id, name, email, phone, position, role, status, equipment_assignments, last_active, created_at, updated_at`

func scanMember(row pgx.Row) (*ProjectMember, error) {
	m := &ProjectMember{}
	err := row.Scan(
		&m.ID, &m.ProjectID, &m.Name, &m.Email, &m.Phone, &m.Position, &m.Role, &m.Status,
		&m.EquipmentAssignments, &m.LastActive, &m.CreatedAt, &m.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return m, nil
}

func (r *pgProjectRepository) AddMember(ctx context.Context, member *ProjectMember) error {
	if member.EquipmentAssignments == nil {
		member.EquipmentAssignments = []string{}
	}
	query := `
		INSERT INTO project_members (project_id, name, email, phone, position, role, status, equipment_assignments)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at
	`
	return r.pool.QueryRow(ctx, query,
		member.ProjectID, member.Name, member.Email, member.Phone, member.Position,
		member.Role, member.Status, member.EquipmentAssignments,
	).Scan(&member.ID, &member.CreatedAt, &member.UpdatedAt)
}

func (r *pgProjectRepository) FindMembers(ctx context.Context, projectID string) ([]*ProjectMember, error) {
	query := `SELECT ` + memberColumns + ` FROM project_members WHERE project_id = $1 ORDER BY created_at`
	rows, err := r.pool.Query(ctx, query, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	members := []*ProjectMember{}
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

func (r *pgProjectRepository) FindMemberByID(ctx context.Context, memberID string) (*ProjectMember, error) {
	query := `SELECT ` + memberColumns + ` FROM project_members WHERE id = $1`
	return scanMember(r.pool.QueryRow(ctx, query, memberID))
}

func (r *pgProjectRepository) FindMemberByEmail(ctx context.Context, projectID, email string) (*ProjectMember, error) {
	query := `SELECT ` + memberColumns + ` FROM project_members WHERE project_id = $1 AND LOWER(email) = LOWER(TRIM($2))`
	return scanMember(r.pool.QueryRow(ctx, query, projectID, email))
}

func (r *pgProjectRepository) UpdateMember(ctx context.Context, member *ProjectMember) error {
	query := `
		UPDATE project_members
		SET name = $2, phone = $3, position = $4, role = $5, status = $6, equipment_assignments = $7,
		    last_active = $8, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`
	return r.pool.QueryRow(ctx, query,
		member.ID, member.Name, member.Phone, member.Position, member.Role, member.Status,
		member.EquipmentAssignments, member.LastActive,
	).Scan(&member.UpdatedAt)
}

func (r *pgProjectRepository) RemoveMember(ctx context.Context, memberID string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM project_members WHERE id = $1`, memberID)
	return err
}
