package cmd

import (
	"fmt"
	"log"

	"github.com/adisurya/campushub/internal/group"
	"github.com/adisurya/campushub/internal/room"
	"github.com/adisurya/campushub/internal/user"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with sample data",
	Long:  `Seed the database with sample data for development and testing purposes.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(".")
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}

		db, err := initDB(cfg.Database)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}

		if clearData {
			for _, table := range []string{"reservations", "pulls", "post_follows", "posts", "rooms", "user_groups", "notifications", "unverified_users", "users"} {
				if err := db.Exec("DELETE FROM " + table).Error; err != nil {
					log.Fatalf("failed to clear %s: %v", table, err)
				}
			}
			fmt.Println("cleared existing data")
		}

		const adminUsername = "admin"
		hash, err := bcrypt.GenerateFromPassword([]byte("password"), cfg.Security.BCryptCost)
		if err != nil {
			log.Fatalf("failed to hash seed password: %v", err)
		}

		var count int64
		db.Model(&user.User{}).Where("username = ?", adminUsername).Count(&count)
		if count == 0 {
			admin := &user.User{
				Username:     adminUsername,
				Email:        "admin@campushub.local",
				PasswordHash: string(hash),
				Active:       true,
			}
			if err := db.Create(admin).Error; err != nil {
				log.Fatalf("failed to insert admin user: %v", err)
			}
			fmt.Println("seeded admin user:", adminUsername)
		} else {
			fmt.Println("admin user already exists; will ensure groups")
		}

		// Capability groups. Membership in these is what makes someone a
		// global or room administrator.
		seedGroups := []*group.Group{
			{
				Name:         "sysadmins",
				Admins:       adminUsername,
				Members:      adminUsername,
				NotPublic:    1,
				Capabilities: group.CapabilityGlobalAdmin,
			},
			{
				Name:         "facilities",
				Admins:       adminUsername,
				Members:      adminUsername,
				NotPublic:    1,
				Capabilities: group.CapabilityRoomAdmin,
			},
			{
				Name:                   "student-council",
				Admins:                 adminUsername,
				Members:                adminUsername,
				CanPostAnnouncement:    adminUsername,
				CanPostAssessment:      adminUsername,
				CanPostPull:            adminUsername,
				CanPostRoomReservation: adminUsername,
			},
		}
		for _, g := range seedGroups {
			if err := ensureGroup(db, g); err != nil {
				log.Fatalf("failed to seed group %s: %v", g.Name, err)
			}
		}

		db.Model(&room.Room{}).Count(&count)
		if count == 0 {
			sample := &room.Room{
				Name:          "Lecture Hall A",
				OpenTime:      "08:00:00",
				CloseTime:     "22:00:00",
				AvailableDays: "2,3,4,5,6",
				Status:        room.StatusActive,
			}
			if err := db.Create(sample).Error; err != nil {
				log.Fatalf("failed to insert sample room: %v", err)
			}
			fmt.Println("seeded sample room:", sample.Name)
		}

		fmt.Println("seeding complete")
	},
}

func ensureGroup(db *gorm.DB, g *group.Group) error {
	var count int64
	if err := db.Model(&group.Group{}).Where("name = ?", g.Name).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	if err := db.Create(g).Error; err != nil {
		return err
	}
	fmt.Println("seeded group:", g.Name)
	return nil
}
