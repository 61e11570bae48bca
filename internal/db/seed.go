package db

import (
	"fmt"
	"log"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/trailnet/trailnet-backend/internal/credentials"
)

// SeedTestData resets the database and populates it with demo users and
// relationship edges.
//
// Behavior:
//  1. Clears users, follows and the three like tables.
//  2. Creates 20 users with real salted hashes (password = username).
//  3. Generates random follow edges and likes honoring the uniqueness
//     constraints.
//
// Compatible with both MySQL and SQLite.
func SeedTestData(gdb *gorm.DB) error {
	r := rand.New(rand.NewSource(time.Now().UnixNano()))

	if err := clearAll(gdb); err != nil {
		return err
	}
	log.Println("Cleared existing data")

	// --- Seed users ---
	userIDs := make([]string, 0, 20)
	for i := 1; i <= 20; i++ {
		username := fmt.Sprintf("user%d", i)

		salt, err := credentials.GenerateSalt()
		if err != nil {
			return fmt.Errorf("failed to generate salt: %w", err)
		}

		user := User{
			Username: username,
			Name:     fmt.Sprintf("Test User %d", i),
			Bio:      fmt.Sprintf("Bio for %s", username),
			Salt:     salt,
			Hash:     credentials.HashPassword(username, salt),
		}
		if err := gdb.Create(&user).Error; err != nil {
			return fmt.Errorf("failed to seed user: %w", err)
		}
		userIDs = append(userIDs, user.ID)
	}
	log.Println("Seeded 20 users.")

	// --- Seed follows (~6 per user, deduped via the unique index) ---
	for _, followerID := range userIDs {
		for j := 0; j < 6; j++ {
			followedID := userIDs[r.Intn(len(userIDs))]
			if followedID == followerID {
				continue
			}
			follow := Follow{FollowerID: followerID, FollowedID: followedID}
			if err := gdb.Create(&follow).Error; err != nil {
				// duplicate pair from the random picks, skip
				continue
			}
		}
	}
	log.Println("Seeded follows.")

	// --- Seed likes across all three kinds ---
	for _, userID := range userIDs {
		for _, kind := range LikeKinds {
			for j := 0; j < r.Intn(4); j++ {
				like := Like{UserID: userID, TargetID: uuid.NewString()}
				if err := gdb.Table(kind.Table()).Create(&like).Error; err != nil {
					return fmt.Errorf("failed to seed %s: %w", kind.Table(), err)
				}
			}
		}
	}
	log.Println("Seeded likes.")

	return nil
}

// SeedMinimalTestData wipes the DB and inserts a small deterministic
// dataset for repeatable tests.
//
// Dataset:
//   - Users: alice, bob, carol (password = username)
//   - alice follows bob, bob follows alice, carol follows alice
//   - alice likes one comment, one route and two pois
func SeedMinimalTestData(gdb *gorm.DB) error {
	if err := clearAll(gdb); err != nil {
		return err
	}

	users := []User{
		{ID: "00000000-0000-0000-0000-000000000001", Username: "alice"},
		{ID: "00000000-0000-0000-0000-000000000002", Username: "bob"},
		{ID: "00000000-0000-0000-0000-000000000003", Username: "carol"},
	}
	for i := range users {
		salt, err := credentials.GenerateSalt()
		if err != nil {
			return err
		}
		users[i].Salt = salt
		users[i].Hash = credentials.HashPassword(users[i].Username, salt)
		if err := gdb.Create(&users[i]).Error; err != nil {
			return err
		}
	}

	follows := []Follow{
		{FollowerID: users[0].ID, FollowedID: users[1].ID},
		{FollowerID: users[1].ID, FollowedID: users[0].ID},
		{FollowerID: users[2].ID, FollowedID: users[0].ID},
	}
	if err := gdb.Create(&follows).Error; err != nil {
		return err
	}

	likes := map[LikeKind][]Like{
		LikeComments: {{UserID: users[0].ID, TargetID: uuid.NewString()}},
		LikeRoutes:   {{UserID: users[0].ID, TargetID: uuid.NewString()}},
		LikePois: {
			{UserID: users[0].ID, TargetID: uuid.NewString()},
			{UserID: users[0].ID, TargetID: uuid.NewString()},
		},
	}
	for kind, edges := range likes {
		for i := range edges {
			if err := gdb.Table(kind.Table()).Create(&edges[i]).Error; err != nil {
				return err
			}
		}
	}

	return nil
}

func clearAll(gdb *gorm.DB) error {
	tables := []string{"follows", "comment_likes", "route_likes", "poi_likes", "users"}
	for _, table := range tables {
		if err := gdb.Exec("DELETE FROM " + table).Error; err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}
	return nil
}
