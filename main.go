package main

import (
	"time"

	"github.com/fiveamclub/fiveam/config"
	"github.com/fiveamclub/fiveam/models"
	"github.com/fiveamclub/fiveam/routes"
	"github.com/fiveamclub/fiveam/utils"
)

func main() {
	cfg := config.Load()

	// Initialize logger early
	if err := utils.InitLogger(cfg); err != nil {
		panic(err)
	}

	db := config.InitDatabase(
		&models.User{},
		&models.Checkin{},
		&models.UserSettings{},
		&models.FriendRequest{},
		&models.Friendship{},
		&models.PageView{},
		&models.UploadedFile{},
	)

	r := routes.SetupRouter(db)

	// Start background cleanup for replaced avatars (best-effort)
	utils.StartAvatarCleaner(5 * time.Minute)

	utils.Sugar.Infof("Starting server on port %s (graceful)", cfg.AppPort)
	if err := utils.GraceServer(":"+cfg.AppPort, r); err != nil {
		utils.Sugar.Fatalf("server stopped with error: %v", err)
	}
}
