package repositories

import (
	"database/sql"
	"encoding/json"

	"github.com/alimgiray/better-github/internal/models"
)

// ContributorSnapshotRepository caches fetched rosters keyed by repository
type ContributorSnapshotRepository struct {
	db *sql.DB
}

func NewContributorSnapshotRepository(db *sql.DB) *ContributorSnapshotRepository {
	return &ContributorSnapshotRepository{db: db}
}

// Upsert stores the snapshot, replacing any previous roster of the repository
func (r *ContributorSnapshotRepository) Upsert(snapshot *models.ContributorSnapshot) error {
	roster, err := json.Marshal(snapshot.Roster)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO contributor_snapshots (repo_full_name, source, roster_json, fetched_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(repo_full_name) DO UPDATE SET
			source = excluded.source,
			roster_json = excluded.roster_json,
			fetched_at = excluded.fetched_at
	`
	_, err = r.db.Exec(query, snapshot.RepoFullName, snapshot.Source, string(roster), snapshot.FetchedAt.UTC())
	return err
}

// GetByRepo returns the cached snapshot of a repository
func (r *ContributorSnapshotRepository) GetByRepo(repoFullName string) (*models.ContributorSnapshot, error) {
	query := `SELECT repo_full_name, source, roster_json, fetched_at FROM contributor_snapshots WHERE repo_full_name = ?`

	snapshot := &models.ContributorSnapshot{}
	var roster string
	err := r.db.QueryRow(query, repoFullName).Scan(
		&snapshot.RepoFullName,
		&snapshot.Source,
		&roster,
		&snapshot.FetchedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(roster), &snapshot.Roster); err != nil {
		return nil, err
	}
	return snapshot, nil
}

// Delete drops the cached snapshot of a repository
func (r *ContributorSnapshotRepository) Delete(repoFullName string) error {
	_, err := r.db.Exec(`DELETE FROM contributor_snapshots WHERE repo_full_name = ?`, repoFullName)
	return err
}
