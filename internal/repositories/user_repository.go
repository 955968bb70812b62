package repositories

import (
	"database/sql"
	"errors"

	"github.com/alimgiray/better-github/internal/models"
	"github.com/google/uuid"
)

type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{
		db: db,
	}
}

const userColumns = `id, name, username, email, profile_picture, github_access_token, created_at`

// Create creates a new user
func (r *UserRepository) Create(user *models.User) error {
	query := `
		INSERT INTO users (` + userColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.Exec(query,
		user.ID.String(),
		user.Name,
		user.Username,
		user.Email,
		user.ProfilePicture,
		user.GitHubAccessToken,
		user.CreatedAt,
	)
	return err
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(id string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = ?`
	return scanUser(r.db.QueryRow(query, id))
}

// GetByUsername retrieves a user by GitHub login, ignoring case
func (r *UserRepository) GetByUsername(username string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username = ? COLLATE NOCASE`
	return scanUser(r.db.QueryRow(query, username))
}

// Update updates a user
func (r *UserRepository) Update(user *models.User) error {
	query := `
		UPDATE users 
		SET name = ?, username = ?, email = ?, profile_picture = ?, github_access_token = ?
		WHERE id = ?
	`

	result, err := r.db.Exec(query,
		user.Name,
		user.Username,
		user.Email,
		user.ProfilePicture,
		user.GitHubAccessToken,
		user.ID.String(),
	)
	if err != nil {
		return err
	}
	return requireAffected(result)
}

func scanUser(row *sql.Row) (*models.User, error) {
	var user models.User
	var userID string
	err := row.Scan(
		&userID,
		&user.Name,
		&user.Username,
		&user.Email,
		&user.ProfilePicture,
		&user.GitHubAccessToken,
		&user.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	user.ID, err = uuid.Parse(userID)
	if err != nil {
		return nil, err
	}

	return &user, nil
}

func requireAffected(result sql.Result) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
