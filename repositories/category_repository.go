package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/fedsports/registration-system/models"
)

var ErrCategoryNotFound = errors.New("category not found")

type CategoryRepository interface {
	Resolve(ctx context.Context, gender string, age int, weight float64) ([]models.Category, error)
	ListActive(ctx context.Context) ([]models.Category, error)
}

type postgresCategoryRepository struct {
	db *sql.DB
}

func NewPostgresCategoryRepository(db *sql.DB) CategoryRepository {
	return &postgresCategoryRepository{db: db}
}

const categoryColumns = `id, sexo, nome_categoria, peso_min, peso_max, idade_min, idade_max, ativo`

// Resolve matches every bound that is configured; a NULL bound passes any
// value on that side. Results are sorted by category name.
func (r *postgresCategoryRepository) Resolve(ctx context.Context, gender string, age int, weight float64) ([]models.Category, error) {
	query := `
		SELECT ` + categoryColumns + `
		FROM categorias
		WHERE ativo = TRUE
		  AND UPPER(sexo) = $1
		  AND (idade_min IS NULL OR $2 >= idade_min)
		  AND (idade_max IS NULL OR $2 <= idade_max)
		  AND (peso_min IS NULL OR $3 >= peso_min)
		  AND (peso_max IS NULL OR $3 <= peso_max)
		ORDER BY nome_categoria`

	return r.query(ctx, query, gender, age, weight)
}

func (r *postgresCategoryRepository) ListActive(ctx context.Context) ([]models.Category, error) {
	query := `
		SELECT ` + categoryColumns + `
		FROM categorias
		WHERE ativo = TRUE
		ORDER BY nome_categoria`
	return r.query(ctx, query)
}

func (r *postgresCategoryRepository) query(ctx context.Context, query string, args ...interface{}) ([]models.Category, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	categories := make([]models.Category, 0)
	for rows.Next() {
		var c models.Category
		if scanErr := rows.Scan(
			&c.ID, &c.Gender, &c.Name, &c.WeightMin, &c.WeightMax, &c.AgeMin, &c.AgeMax, &c.Active,
		); scanErr != nil {
			return nil, scanErr
		}
		categories = append(categories, c)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return categories, nil
}
