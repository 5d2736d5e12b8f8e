package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/changycj/tourneytrack/models"
)

var ErrTournamentNotFound = errors.New("tournament not found")

type TournamentRepository interface {
	Create(ctx context.Context, tournament *models.Tournament) error
	GetByID(ctx context.Context, id int) (*models.Tournament, error)
	List(ctx context.Context) ([]*models.Tournament, error)
	SetStarted(ctx context.Context, id int) error
	SetWinner(ctx context.Context, id int, winnerTeamID *int) error
}

type postgresTournamentRepository struct {
	db *sql.DB
}

func NewPostgresTournamentRepository(db *sql.DB) TournamentRepository {
	return &postgresTournamentRepository{db: db}
}

func (r *postgresTournamentRepository) Create(ctx context.Context, tournament *models.Tournament) error {
	statFields, err := json.Marshal(tournament.StatFields)
	if err != nil {
		return fmt.Errorf("failed to encode stat fields: %w", err)
	}

	query := `
		INSERT INTO tournaments (name, description, admin_id, statfields, started)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`

	return r.db.QueryRowContext(ctx, query,
		tournament.Name,
		tournament.Description,
		tournament.AdminID,
		statFields,
		tournament.Started,
	).Scan(&tournament.ID, &tournament.CreatedAt)
}

func (r *postgresTournamentRepository) GetByID(ctx context.Context, id int) (*models.Tournament, error) {
	query := `
		SELECT id, name, description, admin_id, statfields, started, winner_team_id, created_at
		FROM tournaments
		WHERE id = $1`

	tournament, err := scanTournament(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTournamentNotFound
		}
		return nil, err
	}
	return tournament, nil
}

func (r *postgresTournamentRepository) List(ctx context.Context) ([]*models.Tournament, error) {
	query := `
		SELECT id, name, description, admin_id, statfields, started, winner_team_id, created_at
		FROM tournaments
		ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tournaments := make([]*models.Tournament, 0)
	for rows.Next() {
		tournament, scanErr := scanTournament(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		tournaments = append(tournaments, tournament)
	}
	return tournaments, rows.Err()
}

func (r *postgresTournamentRepository) SetStarted(ctx context.Context, id int) error {
	return r.exec(ctx, `UPDATE tournaments SET started = TRUE WHERE id = $1`, id)
}

func (r *postgresTournamentRepository) SetWinner(ctx context.Context, id int, winnerTeamID *int) error {
	return r.exec(ctx, `UPDATE tournaments SET winner_team_id = $1 WHERE id = $2`, winnerTeamID, id)
}

func (r *postgresTournamentRepository) exec(ctx context.Context, query string, args ...interface{}) error {
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	rowsAffected, checkErr := checkRowsAffected(result)
	if checkErr != nil {
		return checkErr
	}
	if rowsAffected == 0 {
		return ErrTournamentNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanTournament(row rowScanner) (*models.Tournament, error) {
	tournament := &models.Tournament{}
	var statFields []byte
	if err := row.Scan(
		&tournament.ID,
		&tournament.Name,
		&tournament.Description,
		&tournament.AdminID,
		&statFields,
		&tournament.Started,
		&tournament.WinnerTeamID,
		&tournament.CreatedAt,
	); err != nil {
		return nil, err
	}
	if len(statFields) > 0 {
		if err := json.Unmarshal(statFields, &tournament.StatFields); err != nil {
			return nil, fmt.Errorf("failed to decode stat fields for tournament %d: %w", tournament.ID, err)
		}
	}
	return tournament, nil
}
