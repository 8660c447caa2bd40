package media

import (
	"context"

	"github.com/mcardoso/vidsage/internal/model"
)

// Repository defines operations for MediaItem persistence
type Repository interface {
	// Create creates a new media item record and populates its ID
	Create(ctx context.Context, item *model.MediaItem) error

	// GetByID retrieves a media item by its ID
	GetByID(ctx context.Context, id int64) (*model.MediaItem, error)

	// GetByTitle retrieves a media item by exact title
	GetByTitle(ctx context.Context, title string) (*model.MediaItem, error)

	// List retrieves media items ordered by title with pagination
	List(ctx context.Context, limit, offset int) ([]*model.MediaItem, error)

	// ListByStage retrieves media items in a given processing stage
	ListByStage(ctx context.Context, stage string) ([]*model.MediaItem, error)

	// ListPendingAnalysis retrieves items whose summary is empty or null
	ListPendingAnalysis(ctx context.Context) ([]*model.MediaItem, error)

	// UpdateStage advances the processing-stage marker for an item
	UpdateStage(ctx context.Context, id int64, stage string) error

	// SaveAnalysis overwrites one analysis kind's text for an item
	SaveAnalysis(ctx context.Context, id int64, kind model.AnalysisKind, content string) error

	// SaveChatHistory overwrites the serialized chat history for an item
	SaveChatHistory(ctx context.Context, id int64, history []byte) error

	// GetChatHistory retrieves the serialized chat history for an item
	GetChatHistory(ctx context.Context, id int64) ([]byte, error)
}
