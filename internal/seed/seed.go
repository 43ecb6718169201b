package seed

import (
	"context"
	"fmt"
	"log/slog"

	"yatube/internal/middleware"
	"yatube/internal/models"
	"yatube/internal/repository"

	"gorm.io/gorm"
)

// Options configuration for the seeder
type Options struct {
	// Groups is a groups YAML document; nil uses DefaultGroups.
	Groups         []byte
	NumUsers       int
	NumPosts       int
	NumComments    int
	FollowsPerUser int
	MaxDays        int
	// Seed makes generated content reproducible when non-zero.
	Seed int64
}

// Result summarises what a run wrote.
type Result struct {
	Groups   []*models.Group
	Users    []*models.User
	Posts    int
	Comments int
	Follows  int
}

// Seeder populates a database with groups and fake content.
type Seeder struct {
	db *gorm.DB
}

func NewSeeder(db *gorm.DB) *Seeder {
	return &Seeder{db: db}
}

// ClearAll deletes every row the seeder can create, children first.
func (s *Seeder) ClearAll(ctx context.Context) error {
	for _, model := range []any{&models.Comment{}, &models.Follow{}, &models.Post{}, &models.Group{}, &models.User{}} {
		if err := s.db.WithContext(ctx).Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(model).Error; err != nil {
			return fmt.Errorf("clear %T: %w", model, err)
		}
	}
	return nil
}

// Run loads the group fixtures, then creates users, posts, comments and
// follow edges. Groups are idempotent on slug; everything else is added.
func (s *Seeder) Run(ctx context.Context, opts Options) (*Result, error) {
	data := opts.Groups
	if data == nil {
		data = DefaultGroups()
	}
	groups, err := LoadGroups(ctx, repository.NewGroupRepository(s.db), data)
	if err != nil {
		return nil, err
	}
	res := &Result{Groups: groups}

	f := NewFactory(s.db, opts.Seed, opts.MaxDays)

	for i := 0; i < opts.NumUsers; i++ {
		u, err := f.CreateUser(ctx)
		if err != nil {
			return nil, fmt.Errorf("create user: %w", err)
		}
		res.Users = append(res.Users, u)
	}
	if len(res.Users) == 0 {
		return res, nil
	}

	posts := make([]*models.Post, 0, opts.NumPosts)
	for i := 0; i < opts.NumPosts; i++ {
		var group *models.Group
		// Roughly half the posts are filed under a group.
		if len(groups) > 0 && f.pick(2) == 0 {
			group = groups[f.pick(len(groups))]
		}
		p, err := f.CreatePost(ctx, res.Users[f.pick(len(res.Users))], group)
		if err != nil {
			return nil, fmt.Errorf("create post: %w", err)
		}
		posts = append(posts, p)
	}
	res.Posts = len(posts)

	if len(posts) > 0 {
		for i := 0; i < opts.NumComments; i++ {
			if _, err := f.CreateComment(ctx, res.Users[f.pick(len(res.Users))], posts[f.pick(len(posts))]); err != nil {
				return nil, fmt.Errorf("create comment: %w", err)
			}
			res.Comments++
		}
	}

	follows, err := s.followMesh(ctx, f, res.Users, opts.FollowsPerUser)
	if err != nil {
		return nil, err
	}
	res.Follows = follows

	middleware.Logger.InfoContext(ctx, "seed complete",
		slog.Int("groups", len(res.Groups)),
		slog.Int("users", len(res.Users)),
		slog.Int("posts", res.Posts),
		slog.Int("comments", res.Comments),
		slog.Int("follows", res.Follows),
	)
	return res, nil
}

// followMesh makes each user follow perUser distinct other users, capped
// at everyone else. Offsets stay in [1, n-1] so nobody follows themselves.
func (s *Seeder) followMesh(ctx context.Context, f *Factory, users []*models.User, perUser int) (int, error) {
	n := len(users)
	if perUser > n-1 {
		perUser = n - 1
	}
	created := 0
	for i, u := range users {
		if perUser <= 0 {
			break
		}
		start := f.pick(n - 1)
		for k := 0; k < perUser; k++ {
			offset := 1 + (start+k)%(n-1)
			author := users[(i+offset)%n]
			ok, err := f.Follow(ctx, u, author)
			if err != nil {
				return created, fmt.Errorf("follow: %w", err)
			}
			if ok {
				created++
			}
		}
	}
	return created, nil
}
