package service

import (
	"context"
	"encoding/json"
	"log"

	"influencer-scout-be/internal/dto"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

// consumerService drains the in-process bus and runs the processing
// pipeline off the request path. A concluded chat turn returns immediately;
// this consumer picks the session up moments later.
type consumerService struct {
	pubSub          *gochannel.GoChannel
	topicName       string
	pipelineService IPipelineService
}

func NewConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	pipelineService IPipelineService,
) IConsumerService {
	return &consumerService{
		pubSub:          pubSub,
		topicName:       topicName,
		pipelineService: pipelineService,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.PublishProcessMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		log.Printf("[ERROR] Failed to unmarshal process message: %v", err)
		msg.Ack() // Ack invalid messages to prevent infinite retry
		return
	}

	log.Printf("[INFO] Processing summary for session: %s", payload.SessionId)

	res, err := cs.pipelineService.Process(ctx, payload.SessionId)
	if err != nil {
		log.Printf("[ERROR] Pipeline run failed for session %s: %v", payload.SessionId, err)
		msg.Nack() // Retriable: DB or upstream hiccup
		return
	}

	log.Printf("[SUCCESS] Pipeline run finished for session %s: status=%s records=%d",
		payload.SessionId, res.Status, res.Records)
	msg.Ack()
}
