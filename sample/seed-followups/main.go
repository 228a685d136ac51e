// Manual smoke tool: seeds a lead with a follow-up that is already due, so
// the next scheduler tick should emit a "Follow-up due" notification for it.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/xavierca1/ligue-crm/internal/entity"
	"github.com/xavierca1/ligue-crm/internal/infra/database"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file, using system environment")
	}

	if os.Getenv("DATABASE_URL") == "" {
		log.Fatal("DATABASE_URL must be set")
	}

	db, err := database.NewDBConnection(os.Getenv("DATABASE_URL"))
	if err != nil {
		log.Fatalf("database connection failed: %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	leads := database.NewLeadRepository(db)
	followUps := database.NewFollowUpRepository(db)

	lead := entity.NewLead("Joao Teste da Silva", "joao.teste@email.com", "+556199767638", "seeded for a smoke run")
	if err := leads.Create(ctx, lead); err != nil {
		log.Fatalf("lead insert failed: %v", err)
	}

	followUp, err := entity.NewFollowUp(lead.ID, "", "Call back about the proposal", "", time.Now().Add(-time.Minute))
	if err != nil {
		log.Fatalf("follow-up build failed: %v", err)
	}
	if err := followUps.Create(ctx, followUp); err != nil {
		log.Fatalf("follow-up insert failed: %v", err)
	}

	fmt.Printf("Seeded lead %s with due follow-up %s\n", lead.ID, followUp.ID)
	fmt.Println("Watch the API log: the next tick should create the notification.")
}
