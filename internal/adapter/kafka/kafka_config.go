package kafka

import (
	"time"

	"github.com/IBM/sarama"
)

func NewAsyncProducer(brokers []string) (sarama.AsyncProducer, error) {
	cfg := sarama.NewConfig()
	cfg.Version = sarama.V2_6_0_0
	cfg.Producer.RequiredAcks = sarama.WaitForLocal
	cfg.Producer.Return.Successes = false
	cfg.Producer.Return.Errors = true
	cfg.Net.DialTimeout = 5 * time.Second
	return sarama.NewAsyncProducer(brokers, cfg)
}
