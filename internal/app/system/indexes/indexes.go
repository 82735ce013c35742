// Package indexes creates every collection index the app relies on.
// Called once at startup from the EnsureSchema hook, and by the test
// database setup so tests exercise the same uniqueness rules production
// does.
package indexes

import (
	"context"
	"fmt"

	boardstore "github.com/corkboardhq/corkboard/internal/app/store/boards"
	invitestore "github.com/corkboardhq/corkboard/internal/app/store/invites"
	"github.com/corkboardhq/corkboard/internal/app/store/oauthstate"
	poststore "github.com/corkboardhq/corkboard/internal/app/store/posts"
	sessionstore "github.com/corkboardhq/corkboard/internal/app/store/sessions"
	userstore "github.com/corkboardhq/corkboard/internal/app/store/users"
	"go.mongodb.org/mongo-driver/mongo"
)

// EnsureAll creates all indexes. Index creation is idempotent.
func EnsureAll(ctx context.Context, db *mongo.Database) error {
	steps := []struct {
		name   string
		ensure func(context.Context) error
	}{
		{"users", userstore.New(db).EnsureIndexes},
		{"sessions", sessionstore.New(db).EnsureIndexes},
		{"oauth_states", oauthstate.New(db).EnsureIndexes},
		{"boards", boardstore.New(db).EnsureIndexes},
		{"board_invites", invitestore.New(db).EnsureIndexes},
		{"posts", poststore.New(db).EnsureIndexes},
	}

	for _, step := range steps {
		if err := step.ensure(ctx); err != nil {
			return fmt.Errorf("ensure %s indexes: %w", step.name, err)
		}
	}
	return nil
}
