package db

import (
	"fmt"
	"log"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Rough city-center coordinates used to spread seeded users around.
var seedLocations = [][2]float64{
	{37.7749, -122.4194}, // San Francisco
	{37.3382, -121.8863}, // San Jose
	{34.0522, -118.2437}, // Los Angeles
	{40.7128, -74.0060},  // New York
	{51.5074, -0.1278},   // London
}

// SeedTestData resets the database and populates it with demo users, likes,
// blocks and stories.
//
// Behavior:
//  1. Clears existing rows in every seeded table.
//  2. Creates 20 users (10 male, 10 female) with hashed passwords, locations
//     and preferred search radii.
//  3. Generates ~150 like edges plus a handful of blocks and active stories.
//
// Compatible with both MySQL and SQLite.
func SeedTestData(db *gorm.DB) error {
	r := rand.New(rand.NewSource(time.Now().UnixNano()))

	for _, table := range []string{
		"story_likes", "stories", "profile_pop_images", "notifications",
		"messages", "chat_threads", "reports", "profile_shares",
		"user_blocks", "likes", "users",
	} {
		if err := db.Exec("DELETE FROM " + table).Error; err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}

	switch db.Dialector.Name() {
	case "mysql":
		db.Exec("ALTER TABLE users AUTO_INCREMENT = 1")
	case "sqlite":
		db.Exec("DELETE FROM sqlite_sequence WHERE name = 'users'")
	}

	log.Println("Cleared existing data")

	// --- Users (10 male, 10 female) ---
	now := time.Now().UTC()
	for i := 1; i <= 20; i++ {
		hash, err := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("failed to hash password: %w", err)
		}

		gender := "male"
		if i > 10 {
			gender = "female"
		}

		loc := seedLocations[r.Intn(len(seedLocations))]
		lat := loc[0] + (r.Float64()-0.5)*0.2
		lon := loc[1] + (r.Float64()-0.5)*0.2
		radius := float64(5 + r.Intn(45))
		dob := now.AddDate(-(20 + r.Intn(20)), 0, -r.Intn(365))
		lastActivity := now.Add(-time.Duration(r.Intn(120)) * time.Minute)

		user := User{
			Username:     fmt.Sprintf("user%d", i),
			FullName:     fmt.Sprintf("Demo User %d", i),
			Email:        fmt.Sprintf("user%d@example.com", i),
			PasswordHash: string(hash),
			Gender:       gender,
			DOB:          &dob,
			Latitude:     &lat,
			Longitude:    &lon,
			Distance:     &radius,
			Active:       true,
			IsOnline:     r.Intn(100) < 30,
			LastActivity: &lastActivity,
		}

		if err := db.Create(&user).Error; err != nil {
			return fmt.Errorf("failed to seed user: %w", err)
		}

		if err := db.Create(&ProfilePopImage{
			UserID: user.ID,
			URL:    fmt.Sprintf("https://cdn.example.com/pop/%d.jpg", i),
		}).Error; err != nil {
			return fmt.Errorf("failed to seed pop image: %w", err)
		}
	}
	// user1 doubles as the moderator account receiving report notifications.
	if err := db.Model(&User{}).Where("username = ?", "user1").
		Update("staff", true).Error; err != nil {
		return fmt.Errorf("failed to flag staff user: %w", err)
	}
	log.Println("Seeded 20 users.")

	// --- Likes ---
	for from := uint64(1); from <= 20; from++ {
		for j := 0; j < 10; j++ {
			to := uint64(r.Intn(20) + 1)
			if from == to {
				continue
			}
			like := Like{FromUserID: from, ToUserID: to}
			if err := db.Clauses(clause.OnConflict{DoNothing: true}).
				Create(&like).Error; err != nil {
				return fmt.Errorf("failed to seed like: %w", err)
			}
		}
	}

	// --- Blocks ---
	blocks := []UserBlock{
		{BlockerID: 1, BlockedID: 15},
		{BlockerID: 4, BlockedID: 9},
	}
	for _, b := range blocks {
		if err := db.Clauses(clause.OnConflict{DoNothing: true}).
			Create(&b).Error; err != nil {
			return fmt.Errorf("failed to seed block: %w", err)
		}
	}

	// --- Stories ---
	for i := 0; i < 8; i++ {
		story := Story{
			ID:        uuid.NewString(),
			UserID:    uint64(r.Intn(20) + 1),
			Text:      fmt.Sprintf("seed story %d", i),
			ExpiresAt: now.Add(24 * time.Hour),
		}
		if err := db.Create(&story).Error; err != nil {
			return fmt.Errorf("failed to seed story: %w", err)
		}
	}

	return nil
}
