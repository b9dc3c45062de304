package main

import (
	"log"
	"os"

	"autoideas-be/internal/model"
	"autoideas-be/pkg/database"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"gorm.io/datatypes"
)

// Seeds a demo workshop so the simulation client has something to submit to.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Info: No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		log.Fatal("Error: DB_CONNECTION_STRING is not set")
	}

	db, err := database.NewGormDBFromDSN(dsn)
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}

	boardID := os.Getenv("SEED_BOARD_ID")
	if boardID == "" {
		boardID = "demo-board"
	}

	workshop := &model.Workshop{
		Id:      uuid.New(),
		Name:    "Operations Ideas Workshop",
		Slug:    "ops-ideas-demo",
		Status:  "active",
		BoardId: boardID,
		Questions: datatypes.JSON(`[
			{"id": "q1", "text": "What slows down your daily workflow?", "category": "workflow_friction"},
			{"id": "q2", "text": "How could we improve the member experience?", "category": "member_experience"},
			{"id": "q3", "text": "What do you wish we had?", "category": "wishlist"}
		]`),
		StyleRules:          datatypes.JSON(`{"workflow_friction": "#ff9999", "member_experience": "#99ccff", "wishlist": "#99ff99"}`),
		SimilarityThreshold: 0.78,
		CatchAllLabel:       "Unsorted ideas",
		RegionWidth:         300,
		RegionHeight:        600,
	}

	// Re-running the seed replaces the demo workshop by slug.
	db.Where("slug = ?", workshop.Slug).Delete(&model.Workshop{})
	if err := db.Create(workshop).Error; err != nil {
		log.Fatalf("Error: Failed to seed workshop: %v", err)
	}

	ok := color.New(color.FgGreen, color.Bold)
	ok.Println("Seeded demo workshop")
	log.Printf("SIM_WORKSHOP_ID=%s", workshop.Id)
}
