package catalog

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

const dbTimeout = 3 * time.Second

// Repository fornece acesso somente-leitura ao catálogo de ilhas.
type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// Island apresenta uma ilha com o tipo já resolvido.
type Island struct {
	ID             uuid.UUID `json:"island_id"`
	Nome           string    `json:"name"`
	SizeLabel      string    `json:"size_label"`
	CriadoEm       time.Time `json:"created_at"`
	IslandTypeCode string    `json:"island_type_code"`
	IslandTypeNome string    `json:"island_type_name"`
}

// Area é uma região dentro de uma ilha.
type Area struct {
	ID        uuid.UUID `json:"area_id"`
	IslandID  uuid.UUID `json:"island_id"`
	Nome      string    `json:"name"`
	Descricao *string   `json:"description"`
	SortOrder int       `json:"sort_order"`
}

// Mission é uma missão dentro de uma ilha, opcionalmente ligada a uma área.
type Mission struct {
	ID        uuid.UUID  `json:"mission_id"`
	IslandID  uuid.UUID  `json:"island_id"`
	AreaID    *uuid.UUID `json:"area_id"`
	Titulo    string     `json:"title"`
	Descricao *string    `json:"description"`
	Pontos    int        `json:"points"`
	SortOrder int        `json:"sort_order"`
	CriadoEm  time.Time  `json:"created_at"`
}

// Task é um passo de uma missão, com o tipo já resolvido.
type Task struct {
	ID           uuid.UUID `json:"task_id"`
	MissionID    uuid.UUID `json:"mission_id"`
	Titulo       string    `json:"title"`
	Descricao    *string   `json:"description"`
	Pontos       int       `json:"points"`
	SortOrder    int       `json:"sort_order"`
	TaskTypeCode string    `json:"task_type_code"`
	TaskTypeNome string    `json:"task_type_name"`
	CriadoEm     time.Time `json:"created_at"`
}

// ListIslands devolve todas as ilhas, mais recentes primeiro.
func (r *Repository) ListIslands(ctx context.Context) ([]Island, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	rows, err := r.db.Query(ctx, `
		SELECT i.island_id, i.name, i.size_label, i.created_at, t.island_type_code, t.name
		FROM island i
		JOIN island_type t ON t.island_type_code = i.island_type_code
		ORDER BY i.created_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var islands []Island
	for rows.Next() {
		var i Island
		if err := rows.Scan(&i.ID, &i.Nome, &i.SizeLabel, &i.CriadoEm, &i.IslandTypeCode, &i.IslandTypeNome); err != nil {
			return nil, err
		}
		islands = append(islands, i)
	}

	return islands, rows.Err()
}

// ListAreas devolve as áreas de uma ilha em ordem de exibição.
func (r *Repository) ListAreas(ctx context.Context, islandID uuid.UUID) ([]Area, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	rows, err := r.db.Query(ctx, `
		SELECT area_id, island_id, name, description, sort_order
		FROM area
		WHERE island_id = $1
		ORDER BY sort_order, name
	`, islandID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var areas []Area
	for rows.Next() {
		var a Area
		if err := rows.Scan(&a.ID, &a.IslandID, &a.Nome, &a.Descricao, &a.SortOrder); err != nil {
			return nil, err
		}
		areas = append(areas, a)
	}

	return areas, rows.Err()
}

// ListMissions devolve as missões de uma ilha, com filtro opcional por área.
func (r *Repository) ListMissions(ctx context.Context, islandID uuid.UUID, areaID *uuid.UUID) ([]Mission, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	query := `
		SELECT mission_id, island_id, area_id, title, description, points, sort_order, created_at
		FROM mission
		WHERE island_id = $1
	`
	args := []any{islandID}
	if areaID != nil {
		query += ` AND area_id = $2`
		args = append(args, *areaID)
	}
	query += ` ORDER BY sort_order, created_at`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var missions []Mission
	for rows.Next() {
		var m Mission
		if err := rows.Scan(&m.ID, &m.IslandID, &m.AreaID, &m.Titulo, &m.Descricao, &m.Pontos, &m.SortOrder, &m.CriadoEm); err != nil {
			return nil, err
		}
		missions = append(missions, m)
	}

	return missions, rows.Err()
}

// ListTasks devolve as tarefas de uma missão com o tipo resolvido.
func (r *Repository) ListTasks(ctx context.Context, missionID uuid.UUID) ([]Task, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	rows, err := r.db.Query(ctx, `
		SELECT k.task_id, k.mission_id, k.title, k.description, k.points, k.sort_order,
			t.task_type_code, t.name, k.created_at
		FROM task k
		JOIN task_type t ON t.task_type_code = k.task_type_code
		WHERE k.mission_id = $1
		ORDER BY k.sort_order, k.created_at
	`, missionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []Task
	for rows.Next() {
		var t Task
		if err := rows.Scan(&t.ID, &t.MissionID, &t.Titulo, &t.Descricao, &t.Pontos, &t.SortOrder, &t.TaskTypeCode, &t.TaskTypeNome, &t.CriadoEm); err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}

	return tasks, rows.Err()
}
