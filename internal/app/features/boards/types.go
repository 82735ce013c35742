// internal/app/features/boards/types.go
package boards

import (
	"net/http"
	"time"

	"github.com/corkboardhq/corkboard/internal/domain/fault"
	"github.com/corkboardhq/corkboard/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// BoardView is a board as one caller sees it. IsOwner, IsJoined, and
// MemberCount are derived at response time, never stored.
type BoardView struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	OwnerID       string    `json:"owner_id"`
	Members       []string  `json:"members"`
	MemberCount   int       `json:"member_count"`
	CoverPhotoURL string    `json:"cover_photo_url,omitempty"`
	IsOwner       bool      `json:"is_owner"`
	IsJoined      bool      `json:"is_joined"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// viewOf projects a board for the given caller.
func viewOf(b models.Board, caller primitive.ObjectID) BoardView {
	members := make([]string, 0, len(b.Members))
	joined := caller == b.OwnerID
	for _, m := range b.Members {
		members = append(members, m.Hex())
		if m == caller {
			joined = true
		}
	}
	return BoardView{
		ID:            b.ID.Hex(),
		Title:         b.Title,
		Description:   b.Description,
		OwnerID:       b.OwnerID.Hex(),
		Members:       members,
		MemberCount:   len(b.Members),
		CoverPhotoURL: b.CoverPhotoURL,
		IsOwner:       caller == b.OwnerID,
		IsJoined:      joined,
		CreatedAt:     b.CreatedAt,
		UpdatedAt:     b.UpdatedAt,
	}
}

// leaveResponse confirms a leave. Board is nil when the board was deleted.
type leaveResponse struct {
	Deleted bool       `json:"deleted"`
	Board   *BoardView `json:"board,omitempty"`
}

// boardID parses the {id} route parameter.
func boardID(r *http.Request) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		return primitive.NilObjectID, fault.New(fault.Validation, "malformed board id")
	}
	return id, nil
}
