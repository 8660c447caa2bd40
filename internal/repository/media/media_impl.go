package media

import (
	"context"
	"errors"

	apperrors "github.com/mcardoso/vidsage/internal/errors"
	"github.com/mcardoso/vidsage/internal/model"
	"github.com/mcardoso/vidsage/internal/repository/common"
	"github.com/jackc/pgx/v5"
)

const mediaColumns = `id, title, url, author, duration_minutes, stage, summary, insights, tools, counter_intuitive, chat_history, created_at`

// mediaRepository implements Repository using PostgreSQL
type mediaRepository struct {
	pool common.Pool
}

// NewRepository creates a new instance of Repository
func NewRepository(pool common.Pool) Repository {
	return &mediaRepository{
		pool: pool,
	}
}

// Create creates a new media item record and populates its ID
func (r *mediaRepository) Create(ctx context.Context, item *model.MediaItem) error {
	sql := `INSERT INTO media_items (title, url, author, duration_minutes, stage, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`

	err := r.pool.QueryRow(ctx, sql,
		item.Title,
		item.URL,
		item.Author,
		item.DurationMinutes,
		item.Stage,
		item.CreatedAt,
	).Scan(&item.ID)
	if err != nil {
		return common.HandlePostgreSQLError(err, "failed to create media item")
	}
	return nil
}

// GetByID retrieves a media item by its ID
func (r *mediaRepository) GetByID(ctx context.Context, id int64) (*model.MediaItem, error) {
	sql := `SELECT ` + mediaColumns + ` FROM media_items WHERE id = $1`
	row := r.pool.QueryRow(ctx, sql, id)

	item, err := scanMediaItem(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.Wrap(err, apperrors.CodeNotFound, "media item not found")
		}
		return nil, common.HandlePostgreSQLError(err, "failed to get media item")
	}
	return item, nil
}

// GetByTitle retrieves a media item by exact title
func (r *mediaRepository) GetByTitle(ctx context.Context, title string) (*model.MediaItem, error) {
	sql := `SELECT ` + mediaColumns + ` FROM media_items WHERE title = $1`
	row := r.pool.QueryRow(ctx, sql, title)

	item, err := scanMediaItem(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.Wrap(err, apperrors.CodeNotFound, "media item not found")
		}
		return nil, common.HandlePostgreSQLError(err, "failed to get media item by title")
	}
	return item, nil
}

// List retrieves media items ordered by title with pagination
func (r *mediaRepository) List(ctx context.Context, limit, offset int) ([]*model.MediaItem, error) {
	sql := `SELECT ` + mediaColumns + ` FROM media_items ORDER BY title LIMIT $1 OFFSET $2`
	rows, err := r.pool.Query(ctx, sql, limit, offset)
	if err != nil {
		return nil, common.HandlePostgreSQLError(err, "failed to list media items")
	}
	defer rows.Close()

	return collectMediaItems(rows)
}

// ListByStage retrieves media items in a given processing stage
func (r *mediaRepository) ListByStage(ctx context.Context, stage string) ([]*model.MediaItem, error) {
	sql := `SELECT ` + mediaColumns + ` FROM media_items WHERE stage = $1 ORDER BY title`
	rows, err := r.pool.Query(ctx, sql, stage)
	if err != nil {
		return nil, common.HandlePostgreSQLError(err, "failed to list media items by stage")
	}
	defer rows.Close()

	return collectMediaItems(rows)
}

// ListPendingAnalysis retrieves items whose summary is empty or null
func (r *mediaRepository) ListPendingAnalysis(ctx context.Context) ([]*model.MediaItem, error) {
	sql := `SELECT ` + mediaColumns + ` FROM media_items WHERE summary IS NULL OR summary = '' ORDER BY title`
	rows, err := r.pool.Query(ctx, sql)
	if err != nil {
		return nil, common.HandlePostgreSQLError(err, "failed to list items pending analysis")
	}
	defer rows.Close()

	return collectMediaItems(rows)
}

// UpdateStage advances the processing-stage marker for an item
func (r *mediaRepository) UpdateStage(ctx context.Context, id int64, stage string) error {
	sql := `UPDATE media_items SET stage = $2 WHERE id = $1`
	_, err := r.pool.Exec(ctx, sql, id, stage)
	if err != nil {
		return common.HandlePostgreSQLError(err, "failed to update media item stage")
	}
	return nil
}

// SaveAnalysis overwrites one analysis kind's text for an item. Each kind
// maps to its own column; re-runs overwrite rather than append.
func (r *mediaRepository) SaveAnalysis(ctx context.Context, id int64, kind model.AnalysisKind, content string) error {
	column, err := analysisColumn(kind)
	if err != nil {
		return err
	}

	sql := `UPDATE media_items SET ` + column + ` = $2 WHERE id = $1`
	tag, err := r.pool.Exec(ctx, sql, id, content)
	if err != nil {
		return common.HandlePostgreSQLError(err, "failed to save analysis")
	}
	if tag.RowsAffected() == 0 {
		return apperrors.New(apperrors.CodeNotFound, "media item not found")
	}
	return nil
}

// SaveChatHistory overwrites the serialized chat history for an item
func (r *mediaRepository) SaveChatHistory(ctx context.Context, id int64, history []byte) error {
	sql := `UPDATE media_items SET chat_history = $2 WHERE id = $1`
	tag, err := r.pool.Exec(ctx, sql, id, history)
	if err != nil {
		return common.HandlePostgreSQLError(err, "failed to save chat history")
	}
	if tag.RowsAffected() == 0 {
		return apperrors.New(apperrors.CodeNotFound, "media item not found")
	}
	return nil
}

// GetChatHistory retrieves the serialized chat history for an item
func (r *mediaRepository) GetChatHistory(ctx context.Context, id int64) ([]byte, error) {
	sql := `SELECT chat_history FROM media_items WHERE id = $1`
	row := r.pool.QueryRow(ctx, sql, id)

	var history []byte
	if err := row.Scan(&history); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.Wrap(err, apperrors.CodeNotFound, "media item not found")
		}
		return nil, common.HandlePostgreSQLError(err, "failed to get chat history")
	}
	return history, nil
}

// analysisColumn maps an analysis kind to its column. The closed switch
// makes adding a kind a compile-visible change.
func analysisColumn(kind model.AnalysisKind) (string, error) {
	switch kind {
	case model.AnalysisSummary:
		return "summary", nil
	case model.AnalysisInsights:
		return "insights", nil
	case model.AnalysisTools:
		return "tools", nil
	case model.AnalysisCounterIntuitive:
		return "counter_intuitive", nil
	default:
		return "", apperrors.New(apperrors.CodeInvalidArg, "unknown analysis kind: "+string(kind))
	}
}

func scanMediaItem(row pgx.Row) (*model.MediaItem, error) {
	var item model.MediaItem
	err := row.Scan(
		&item.ID,
		&item.Title,
		&item.URL,
		&item.Author,
		&item.DurationMinutes,
		&item.Stage,
		&item.Summary,
		&item.Insights,
		&item.Tools,
		&item.CounterIntuitive,
		&item.ChatHistory,
		&item.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func collectMediaItems(rows pgx.Rows) ([]*model.MediaItem, error) {
	items := []*model.MediaItem{}
	for rows.Next() {
		item, err := scanMediaItem(rows)
		if err != nil {
			return nil, common.HandlePostgreSQLError(err, "failed to scan media item row")
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, common.HandlePostgreSQLError(err, "failed to iterate media item rows")
	}

	return items, nil
}
