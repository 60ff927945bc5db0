// Package activity assembles the comment activity feed: the most recent
// comments a viewer is allowed to see, projected into display items.
package activity

import (
	"context"
	"time"

	"github.com/anonto42/capsule-social/backend/internal/apperrors"
	"github.com/anonto42/capsule-social/backend/internal/models"
	"github.com/anonto42/capsule-social/backend/internal/visibility"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

const (
	AuthenticatedLimit = 30
	AnonymousLimit     = 20

	itemType   = "comment"
	itemAction = "commented on"
)

// PredicateSource resolves the visibility predicate of a viewer.
type PredicateSource interface {
	Predicate(ctx context.Context, viewer visibility.Viewer) (visibility.Predicate, error)
}

// CommentSource runs the filtered activity query.
type CommentSource interface {
	ListActivity(ctx context.Context, scope func(*gorm.DB) *gorm.DB, limit int) ([]models.CommentActivity, error)
}

// UserSource loads comment authors.
type UserSource interface {
	GetUsersByIDs(ctx context.Context, ids []uint) ([]models.User, error)
}

// CapsuleSource loads the capsules comments belong to.
type CapsuleSource interface {
	GetCapsulesByIDs(ctx context.Context, ids []uint) ([]models.Capsule, error)
}

// AvatarResolver maps a stored profile image path to a public URL.
type AvatarResolver interface {
	AvatarURL(path *string) *string
}

// Assembler builds activity feeds. It keeps no per-request state and is safe
// for concurrent use.
type Assembler struct {
	filter   PredicateSource
	comments CommentSource
	users    UserSource
	capsules CapsuleSource
	avatars  AvatarResolver
	now      func() time.Time
	logger   *zap.Logger
	degraded prometheus.Counter
}

// Option configures an Assembler.
type Option func(*Assembler)

// WithClock overrides the clock used for elapsed-time labels.
func WithClock(now func() time.Time) Option {
	return func(a *Assembler) { a.now = now }
}

// WithLogger sets the logger used to report degraded items.
func WithLogger(logger *zap.Logger) Option {
	return func(a *Assembler) { a.logger = logger }
}

// WithDegradedCounter counts feed items rendered without a usable timestamp.
func WithDegradedCounter(c prometheus.Counter) Option {
	return func(a *Assembler) { a.degraded = c }
}

// NewAssembler creates an Assembler.
func NewAssembler(filter PredicateSource, comments CommentSource, users UserSource, capsules CapsuleSource, avatars AvatarResolver, opts ...Option) *Assembler {
	a := &Assembler{
		filter:   filter,
		comments: comments,
		users:    users,
		capsules: capsules,
		avatars:  avatars,
		now:      time.Now,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// BuildFeed returns the feed for viewer, newest first. Any data source failure
// fails the whole feed.
func (a *Assembler) BuildFeed(ctx context.Context, viewer visibility.Viewer) ([]models.FeedItem, error) {
	pred, err := a.filter.Predicate(ctx, viewer)
	if err != nil {
		return nil, apperrors.AsDataSource("resolving visibility", err)
	}

	limit := AnonymousLimit
	if viewer.IsAuthenticated() {
		limit = AuthenticatedLimit
	}

	rows, err := a.comments.ListActivity(ctx, pred.Scope, limit)
	if err != nil {
		return nil, apperrors.NewDataSource("loading comment activity", err)
	}
	rows = dedupeByID(rows)
	if len(rows) == 0 {
		return []models.FeedItem{}, nil
	}

	users, capsules, err := a.loadRelations(ctx, rows)
	if err != nil {
		return nil, err
	}

	now := a.now()
	items := make([]models.FeedItem, 0, len(rows))
	for _, row := range rows {
		user, ok := users[row.UserID]
		if !ok {
			a.logger.Warn("comment author missing, skipping feed item", zap.Uint("comment_id", row.ID), zap.Uint("user_id", row.UserID))
			continue
		}
		capsule, ok := capsules[row.CapsuleID]
		if !ok {
			a.logger.Warn("comment capsule missing, skipping feed item", zap.Uint("comment_id", row.ID), zap.Uint("capsule_id", row.CapsuleID))
			continue
		}
		items = append(items, a.project(viewer, now, row, user, capsule))
	}
	return items, nil
}

func (a *Assembler) loadRelations(ctx context.Context, rows []models.CommentActivity) (map[uint]models.User, map[uint]models.Capsule, error) {
	userIDs := make([]uint, 0, len(rows))
	capsuleIDs := make([]uint, 0, len(rows))
	seenUsers := make(map[uint]bool, len(rows))
	seenCapsules := make(map[uint]bool, len(rows))
	for _, row := range rows {
		if !seenUsers[row.UserID] {
			seenUsers[row.UserID] = true
			userIDs = append(userIDs, row.UserID)
		}
		if !seenCapsules[row.CapsuleID] {
			seenCapsules[row.CapsuleID] = true
			capsuleIDs = append(capsuleIDs, row.CapsuleID)
		}
	}

	users := make(map[uint]models.User, len(userIDs))
	capsules := make(map[uint]models.Capsule, len(capsuleIDs))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		list, err := a.users.GetUsersByIDs(gctx, userIDs)
		if err != nil {
			return apperrors.NewDataSource("loading comment authors", err)
		}
		for _, u := range list {
			users[u.ID] = u
		}
		return nil
	})
	g.Go(func() error {
		list, err := a.capsules.GetCapsulesByIDs(gctx, capsuleIDs)
		if err != nil {
			return apperrors.NewDataSource("loading capsules", err)
		}
		for _, c := range list {
			capsules[c.ID] = c
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return users, capsules, nil
}

func (a *Assembler) project(viewer visibility.Viewer, now time.Time, row models.CommentActivity, user models.User, capsule models.Capsule) models.FeedItem {
	var createdAt time.Time
	if row.CreatedAt.Valid {
		createdAt = row.CreatedAt.Time
	}
	if createdAt.IsZero() {
		a.logger.Warn("comment has no usable timestamp", zap.Uint("comment_id", row.ID))
		if a.degraded != nil {
			a.degraded.Inc()
		}
	}

	return models.FeedItem{
		ID:   row.ID,
		Type: itemType,
		User: models.FeedUser{
			ID:           user.ID,
			Name:         user.Name,
			ProfileImage: a.avatars.AvatarURL(user.ProfileImage),
			Initials:     Initials(user.Name),
		},
		Action: itemAction,
		Capsule: models.FeedCapsule{
			ID:    capsule.ID,
			Title: capsule.Title,
		},
		ContentPreview: ContentPreview(row.Comment),
		TimeElapsed:    TimeElapsed(now, createdAt),
		CreatedAt:      FormatTimestamp(createdAt),
		IsCurrentUser:  viewer.Is(row.UserID),
	}
}

func dedupeByID(rows []models.CommentActivity) []models.CommentActivity {
	seen := make(map[uint]struct{}, len(rows))
	out := rows[:0]
	for _, row := range rows {
		if _, ok := seen[row.ID]; ok {
			continue
		}
		seen[row.ID] = struct{}{}
		out = append(out, row)
	}
	return out
}
