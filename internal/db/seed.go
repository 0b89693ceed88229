package db

import (
	"fmt"
	"log"
	"math/rand"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var seedFirstNames = []string{
	"Aarav", "Bianca", "Chetan", "Divya", "Ethan", "Farah", "Gaurav", "Hana",
	"Ishan", "Julia", "Kunal", "Lena", "Mohit", "Nadia", "Omar", "Priya",
	"Rohan", "Sara", "Tarun", "Uma",
}

// SeedTestData resets the database and populates it with demo users,
// requests, connections and a few chat messages.
//
// Behavior:
//  1. Clears existing data in all four tables.
//  2. Creates 20 users (alternating gender) with hashed passwords.
//  3. Generates interested/ignore requests; every mutual interested pair is
//     collapsed into a Connection the same way the matching engine would.
//  4. Connected pairs get a short seeded conversation.
//
// Compatible with both MySQL and SQLite (AUTO_INCREMENT reset skipped for SQLite).
func SeedTestData(db *gorm.DB) error {
	r := rand.New(rand.NewSource(time.Now().UnixNano()))

	// --- Fresh start ---
	for _, table := range []string{"messages", "connections", "connection_requests", "users"} {
		if err := db.Exec("DELETE FROM " + table).Error; err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}

	switch db.Dialector.Name() {
	case "mysql":
		db.Exec("ALTER TABLE users AUTO_INCREMENT = 1")
		db.Exec("ALTER TABLE messages AUTO_INCREMENT = 1")
	case "sqlite":
		db.Exec("DELETE FROM sqlite_sequence WHERE name = 'users'")
		db.Exec("DELETE FROM sqlite_sequence WHERE name = 'messages'")
	}

	log.Println("Cleared existing data")

	// --- Seed Users ---
	hash, err := bcrypt.GenerateFromPassword([]byte("Password@123"), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	for i := 1; i <= 20; i++ {
		gender := GenderMale
		if i%2 == 0 {
			gender = GenderFemale
		}

		age := 21 + r.Intn(15)
		user := User{
			FirstName:    seedFirstNames[i-1],
			LastName:     "Dev",
			Email:        fmt.Sprintf("user%d@example.com", i),
			PasswordHash: string(hash),
			Age:          &age,
			Gender:       gender,
			About:        "Dev in search of a good pair programmer",
			PhotoURL:     DefaultPhotoURL(gender),
			Skills:       []string{"go", "react"},
		}
		if err := db.Create(&user).Error; err != nil {
			return fmt.Errorf("failed to seed user: %w", err)
		}
	}
	log.Println("Seeded 20 users.")

	// --- Seed Requests / Connections ---
	for from := uint64(1); from <= 20; from++ {
		for j := 0; j < 6; j++ {
			to := uint64(r.Intn(20) + 1)
			if from == to {
				continue
			}

			lo, hi := NormalizePair(from, to)
			var connCount int64
			db.Model(&Connection{}).
				Where("user_lo_id = ? AND user_hi_id = ?", lo, hi).
				Count(&connCount)
			if connCount > 0 {
				continue
			}

			status := StatusInterested
			if r.Intn(100) < 25 {
				status = StatusIgnore
			}

			// mutual interest collapses into a connection
			var reverse ConnectionRequest
			mutual := status == StatusInterested &&
				db.Where("from_user_id = ? AND to_user_id = ? AND status = ?", to, from, StatusInterested).
					First(&reverse).Error == nil
			if mutual {
				if err := db.Create(&Connection{UserLoID: lo, UserHiID: hi}).Error; err != nil {
					return fmt.Errorf("failed to seed connection: %w", err)
				}
				db.Where(
					"(from_user_id = ? AND to_user_id = ?) OR (from_user_id = ? AND to_user_id = ?)",
					from, to, to, from,
				).Delete(&ConnectionRequest{})
				continue
			}

			req := ConnectionRequest{FromUserID: from, ToUserID: to, Status: status}
			if err := db.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "from_user_id"}, {Name: "to_user_id"}},
				DoUpdates: clause.AssignmentColumns([]string{"status", "updated_at"}),
			}).Create(&req).Error; err != nil {
				return fmt.Errorf("failed to seed request: %w", err)
			}
		}
	}

	// --- Seed Messages for connected pairs ---
	var connections []Connection
	if err := db.Find(&connections).Error; err != nil {
		return err
	}
	for _, c := range connections {
		msgs := []Message{
			{SenderID: c.UserLoID, ReceiverID: c.UserHiID, Content: "Hey, we matched!"},
			{SenderID: c.UserHiID, ReceiverID: c.UserLoID, Content: "Hi! What are you building these days?"},
		}
		if err := db.Create(&msgs).Error; err != nil {
			return fmt.Errorf("failed to seed messages: %w", err)
		}
	}

	log.Printf("Seeded %d connections with starter conversations.", len(connections))
	return nil
}
