package proxies

import (
	"time"

	"github.com/google/uuid"

	"github.com/phantomlabs/phantom-backend/pkg/db/models"
)

// GroupDTO is the transport shape for a proxy group. Credentials stay in
// the stored lines; the API reports counts, not the raw entries.
type GroupDTO struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Size      int       `json:"size"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func FromModel(g *models.ProxyGroup) *GroupDTO {
	if g == nil {
		return nil
	}
	return &GroupDTO{
		ID:        g.ID,
		Name:      g.Name,
		Size:      len(g.Proxies),
		CreatedAt: g.CreatedAt,
		UpdatedAt: g.UpdatedAt,
	}
}

func FromModels(groups []models.ProxyGroup) []GroupDTO {
	out := make([]GroupDTO, 0, len(groups))
	for i := range groups {
		out = append(out, *FromModel(&groups[i]))
	}
	return out
}
