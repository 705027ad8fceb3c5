//go:build integration

package kafka_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kgo"

	"portaria/internal/audit"
	"portaria/internal/audit/kafka"
	"portaria/pkg/testutil/containers"
)

type KafkaSinkSuite struct {
	suite.Suite
	broker string
	sink   *kafka.Sink
}

func TestKafkaSinkSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(KafkaSinkSuite))
}

func (s *KafkaSinkSuite) SetupSuite() {
	rp := containers.NewRedpandaContainer(s.T())
	s.broker = rp.Broker

	sink, err := kafka.New([]string{s.broker}, "")
	s.Require().NoError(err)
	s.sink = sink
}

func (s *KafkaSinkSuite) TearDownSuite() {
	if s.sink != nil {
		s.sink.Close()
	}
}

func (s *KafkaSinkSuite) TestPublishLandsOnTopic() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	entry := audit.Entry{
		ID:        uuid.New(),
		Action:    audit.ActionVisitorRegistered,
		Details:   "Visitante Maria Souza registrado na Sala Rubi",
		Actor:     &audit.Actor{ID: "op-1", Name: "Carlos"},
		Level:     audit.LevelInfo,
		Timestamp: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
	}
	s.Require().NoError(s.sink.Publish(ctx, entry))

	consumer, err := kgo.NewClient(
		kgo.SeedBrokers(s.broker),
		kgo.ConsumeTopics(kafka.DefaultTopic),
		kgo.ConsumeResetOffset(kgo.NewOffset().AtStart()),
	)
	s.Require().NoError(err)
	defer consumer.Close()

	fetches := consumer.PollFetches(ctx)
	s.Require().NoError(fetches.Err())
	records := fetches.Records()
	s.Require().NotEmpty(records)

	var got struct {
		ID        string `json:"id"`
		Action    string `json:"action"`
		Details   string `json:"details"`
		ActorName string `json:"actor_name"`
		Level     string `json:"level"`
		Timestamp string `json:"timestamp"`
	}
	s.Require().NoError(json.Unmarshal(records[0].Value, &got))
	s.Equal(entry.ID.String(), got.ID)
	s.Equal("VISITOR_REGISTERED", got.Action)
	s.Equal("Visitante Maria Souza registrado na Sala Rubi", got.Details)
	s.Equal("Carlos", got.ActorName)
	s.Equal("info", got.Level)
	s.Equal("2026-03-01T09:00:00Z", got.Timestamp)
	s.Equal([]byte("VISITOR_REGISTERED"), records[0].Key)
}

func (s *KafkaSinkSuite) TestTopicVisibleToAdmin() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	s.Require().NoError(s.sink.Publish(ctx, audit.Entry{
		ID:        uuid.New(),
		Action:    audit.ActionUserLogin,
		Details:   "Usuário Carlos fez login",
		Level:     audit.LevelInfo,
		Timestamp: time.Now().UTC(),
	}))

	client, err := kgo.NewClient(kgo.SeedBrokers(s.broker))
	s.Require().NoError(err)
	defer client.Close()

	admin := kadm.NewClient(client)
	topics, err := admin.ListTopics(ctx)
	s.Require().NoError(err)
	s.True(topics.Has(kafka.DefaultTopic))
}
