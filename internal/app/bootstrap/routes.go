// internal/app/bootstrap/routes.go
package bootstrap

import (
	"context"
	"fmt"
	"net/http"

	"github.com/dalemusser/waffle/config"
	"github.com/dalemusser/waffle/pantry/storage"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	authgooglefeature "github.com/corkboardhq/corkboard/internal/app/features/authgoogle"
	boardsfeature "github.com/corkboardhq/corkboard/internal/app/features/boards"
	healthfeature "github.com/corkboardhq/corkboard/internal/app/features/health"
	loginfeature "github.com/corkboardhq/corkboard/internal/app/features/login"
	postsfeature "github.com/corkboardhq/corkboard/internal/app/features/posts"
	userinfofeature "github.com/corkboardhq/corkboard/internal/app/features/userinfo"
	boardstore "github.com/corkboardhq/corkboard/internal/app/store/boards"
	invitestore "github.com/corkboardhq/corkboard/internal/app/store/invites"
	"github.com/corkboardhq/corkboard/internal/app/store/oauthstate"
	poststore "github.com/corkboardhq/corkboard/internal/app/store/posts"
	sessionstore "github.com/corkboardhq/corkboard/internal/app/store/sessions"
	userstore "github.com/corkboardhq/corkboard/internal/app/store/users"
	"github.com/corkboardhq/corkboard/internal/app/system/auth"
	"github.com/corkboardhq/corkboard/internal/app/system/timeouts"
)

// BuildHandler constructs the root HTTP handler for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connection, schema setup, and
// Startup have completed. It builds the stores, the session manager, the
// cover photo storage backend, and mounts every feature router.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	db := deps.MongoDatabase

	users := userstore.New(db)
	tokens := sessionstore.New(db)
	boards := boardstore.New(db)
	invites := invitestore.New(db)
	posts := poststore.New(db)
	states := oauthstate.New(db)

	secure := coreCfg.Env == "prod"
	sessionMgr, err := auth.NewSessionManager(appCfg.SessionKey, appCfg.SessionName, appCfg.SessionDomain, secure, tokens, users, logger)
	if err != nil {
		logger.Error("session manager init failed", zap.Error(err))
		return nil, err
	}

	assets, err := buildStorage(appCfg)
	if err != nil {
		logger.Error("cover storage init failed", zap.Error(err))
		return nil, err
	}

	r := chi.NewRouter()

	// Global auth middleware: resolves the caller into context whether
	// the credential is a bearer token or the cookie session.
	r.Use(sessionMgr.LoadSessionUser)

	healthHandler := healthfeature.NewHandler(deps.MongoClient, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	// Authentication. Google sign-in nests under /auth/google so the two
	// auth surfaces share one mount point.
	loginHandler := loginfeature.NewHandler(users, sessionMgr, logger)
	authRouter := loginHandler.Routes()
	googleHandler := authgooglefeature.NewHandler(users, states, sessionMgr,
		appCfg.GoogleClientID, appCfg.GoogleClientSecret, appCfg.BaseURL, logger)
	authRouter.Mount("/google", authgooglefeature.Routes(googleHandler))
	r.Mount("/auth", authRouter)

	userinfofeature.MountRoutes(r, userinfofeature.NewHandler())

	// Boards and their feeds. The posts router nests under the board it
	// belongs to so it inherits the {id} route parameter.
	boardsHandler := boardsfeature.NewHandler(boards, invites, users, assets, posts, appCfg.StoragePublicURL, logger)
	boardsRouter := boardsfeature.Routes(boardsHandler)
	postsHandler := postsfeature.NewHandler(posts, boards, logger)
	boardsRouter.Mount("/{id}/posts", postsHandler.Routes())
	r.Mount("/boards", boardsRouter)

	return r, nil
}

// buildStorage constructs the cover photo storage backend from config.
func buildStorage(appCfg AppConfig) (storage.Store, error) {
	switch appCfg.StorageType {
	case "local":
		st, err := storage.NewLocal(storage.LocalConfig{
			BasePath: appCfg.StorageLocalPath,
			BaseURL:  appCfg.StorageLocalURL,
		})
		if err != nil {
			return nil, err
		}
		return st, nil
	case "s3":
		ctx, cancel := context.WithTimeout(context.Background(), timeouts.Long())
		defer cancel()
		st, err := storage.NewS3(ctx, storage.S3Config{
			Bucket: appCfg.StorageS3Bucket,
			Region: appCfg.StorageS3Region,
			Prefix: appCfg.StorageS3Prefix,
		})
		if err != nil {
			return nil, err
		}
		return st, nil
	default:
		return nil, fmt.Errorf("unknown storage type %q", appCfg.StorageType)
	}
}
