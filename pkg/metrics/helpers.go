package metrics

import (
	"time"
)

type MongoOperation string

const (
	MongoOpFind      MongoOperation = "find"
	MongoOpInsert    MongoOperation = "insert"
	MongoOpUpdate    MongoOperation = "update"
	MongoOpDelete    MongoOperation = "delete"
	MongoOpAggregate MongoOperation = "aggregate"
)

type MongoTimer struct {
	service    string
	operation  MongoOperation
	collection string
	start      time.Time
}

func NewMongoTimer(service string, op MongoOperation, collection string) *MongoTimer {
	return &MongoTimer{
		service:    service,
		operation:  op,
		collection: collection,
		start:      time.Now(),
	}
}

func (mt *MongoTimer) ObserveDuration() {
	duration := time.Since(mt.start).Seconds()
	MongoOperationDuration.WithLabelValues(mt.service, string(mt.operation), mt.collection).Observe(duration)
}

func RecordMongoError(service string, op MongoOperation) {
	MongoErrors.WithLabelValues(service, string(op)).Inc()
}

func RecordCacheHit(service, keyPrefix string) {
	RedisCacheHits.WithLabelValues(service, keyPrefix).Inc()
}

func RecordCacheMiss(service, keyPrefix string) {
	RedisCacheMisses.WithLabelValues(service, keyPrefix).Inc()
}

func RecordRedisError(service, operation string) {
	RedisErrors.WithLabelValues(service, operation).Inc()
}

type RatingRecomputeTimer struct {
	service string
	start   time.Time
}

func NewRatingRecomputeTimer(service string) *RatingRecomputeTimer {
	return &RatingRecomputeTimer{
		service: service,
		start:   time.Now(),
	}
}

func (rt *RatingRecomputeTimer) Success() {
	RatingRecomputesTotal.WithLabelValues(rt.service, "success").Inc()
	RatingRecomputeDuration.WithLabelValues(rt.service).Observe(time.Since(rt.start).Seconds())
}

func (rt *RatingRecomputeTimer) Error() {
	RatingRecomputesTotal.WithLabelValues(rt.service, "error").Inc()
}

type KafkaProduceTimer struct {
	service string
	topic   string
	start   time.Time
}

func NewKafkaProduceTimer(service, topic string) *KafkaProduceTimer {
	return &KafkaProduceTimer{
		service: service,
		topic:   topic,
		start:   time.Now(),
	}
}

func (kt *KafkaProduceTimer) Success() {
	KafkaMessagesProduced.WithLabelValues(kt.service, kt.topic).Inc()
	KafkaProduceDuration.WithLabelValues(kt.service, kt.topic).Observe(time.Since(kt.start).Seconds())
}

func (kt *KafkaProduceTimer) Error() {
	KafkaErrors.WithLabelValues(kt.service, kt.topic, "produce").Inc()
}
