// Command main runs the database seeder for yatube.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"yatube/internal/config"
	"yatube/internal/database"
	"yatube/internal/middleware"
	"yatube/internal/seed"
)

func main() {
	numUsers := flag.Int("users", 20, "Number of users to create")
	numPosts := flag.Int("posts", 120, "Number of posts to create")
	numComments := flag.Int("comments", 200, "Number of comments to create")
	follows := flag.Int("follows", 5, "Authors each user follows")
	groupsFile := flag.String("groups", "", "Groups YAML file (defaults to the built-in list)")
	groupsOnly := flag.Bool("groups-only", false, "Only create groups")
	shouldClean := flag.Bool("clean", false, "Clean database before seeding")
	tokens := flag.Int("tokens", 3, "Print bearer tokens for this many seeded users")
	randSeed := flag.Int64("seed", 0, "Random seed for reproducible content")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if cfg.IsProduction() {
		log.Fatal("Refusing to seed a production database")
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	opts := seed.Options{
		NumUsers:       *numUsers,
		NumPosts:       *numPosts,
		NumComments:    *numComments,
		FollowsPerUser: *follows,
		Seed:           *randSeed,
	}
	if *groupsFile != "" {
		data, err := os.ReadFile(*groupsFile)
		if err != nil {
			log.Fatalf("Failed to read groups file: %v", err)
		}
		opts.Groups = data
	}
	if *groupsOnly {
		opts.NumUsers = 0
	}

	ctx := context.Background()
	s := seed.NewSeeder(db)
	if *shouldClean {
		if err := s.ClearAll(ctx); err != nil {
			log.Fatalf("Cleanup failed: %v", err)
		}
	}

	res, err := s.Run(ctx, opts)
	if err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}
	log.Printf("Seeded %d groups, %d users, %d posts, %d comments, %d follows",
		len(res.Groups), len(res.Users), res.Posts, res.Comments, res.Follows)

	for i, u := range res.Users {
		if i >= *tokens {
			break
		}
		token, err := middleware.IssueToken(cfg.JWTSecret, u.ID, 24*time.Hour)
		if err != nil {
			log.Fatalf("Failed to issue token: %v", err)
		}
		fmt.Printf("%s\tBearer %s\n", u.Username, token)
	}
}
