package repository

import (
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound is returned by stores that cannot express "missing" as a nil row.
var ErrNotFound = errors.New("record not found")

type Repositories struct {
	// Core repositories (pgxpool)
	UserRepo         UserRepository
	ProjectRepo      ProjectRepository
	EquipmentRepo    EquipmentRepository
	InvitationRepo   InvitationRepository
	NotificationRepo NotificationRepository

	// Document + audit repositories (sql.DB)
	VDCRRepo        VDCRRepository
	ActivityLogRepo ActivityLogRepository
}

func NewRepositories(pool *pgxpool.Pool, db *sql.DB) *Repositories {
	return &Repositories{
		// pgxpool repos
		UserRepo:         NewUserRepository(pool),
		ProjectRepo:      NewProjectRepository(pool),
		EquipmentRepo:    NewEquipmentRepository(pool),
		InvitationRepo:   NewInvitationRepository(pool),
		NotificationRepo: NewNotificationRepository(pool),

		// sql.DB repos
		VDCRRepo:        NewVDCRRepository(db),
		ActivityLogRepo: NewActivityLogRepository(db),
	}
}
