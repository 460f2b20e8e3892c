package main

import (
	"context"
	"log"

	"influencer-scout-be/internal/bootstrap"
	"influencer-scout-be/internal/config"
	"influencer-scout-be/pkg/database"
	"influencer-scout-be/pkg/events"
	pktNats "influencer-scout-be/pkg/nats"

	"github.com/google/uuid"
)

// Standalone pipeline worker. Subscribes to SESSION_CONCLUDED events on
// NATS and runs processing outside the API process. Deployments that keep
// processing in-process can skip this binary; reruns are idempotent since
// a session's dataset is overwritten, not duplicated.
func main() {
	cfg := config.Load()

	gormDB, err := database.NewGormDBFromDSN(cfg.Database.Connection)
	if err != nil {
		log.Panicf("Unable to connect to GORM DB: %v", err)
	}

	container := bootstrap.NewContainer(gormDB, cfg)

	sub, err := pktNats.NewSubscriber(cfg.App.NatsURL)
	if err != nil {
		log.Fatalf("Unable to connect to NATS: %v", err)
	}
	defer sub.Close()

	subject := "scout." + events.TypeSessionConcluded
	err = sub.Subscribe(subject, "pipeline-worker", func(ctx context.Context, event events.Event) error {
		payload := event.Payload()
		sidStr, _ := payload["session_id"].(string)
		sessionId, err := uuid.Parse(sidStr)
		if err != nil {
			log.Printf("[ERROR] Event carried invalid session_id %q, dropping", sidStr)
			return nil // unparseable events are not retriable
		}

		res, err := container.PipelineService.Process(ctx, sessionId)
		if err != nil {
			return err
		}
		log.Printf("[INFO] Processed session %s: status=%s records=%d", sessionId, res.Status, res.Records)
		return nil
	})
	if err != nil {
		log.Fatalf("Unable to subscribe: %v", err)
	}

	log.Println("Pipeline worker running, waiting for concluded sessions...")
	select {}
}
