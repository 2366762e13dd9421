package main

import (
	"context"
	"flag"
	"log"
	"math/rand"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"rfidattend/internal/queue"
	"rfidattend/internal/store"
)

// Simulator publishes scan and heartbeat events onto the intake queue
// so a dev server shows live data without hardware. It stands in for a
// real reader driver behind the same event-source boundary.
func main() {
	redisAddr := flag.String("redis", "localhost:6379", "Redis address for the event queue")
	queueKey := flag.String("queue-key", "rfidattend:events", "Redis list key for events")
	readerID := flag.String("reader-id", "RFID-001", "Reader identifier")
	tags := flag.String("tags", "RF001,RF002,RF003,RF004,RF005,RF999", "Comma-separated tag ids to scan")
	scanInterval := flag.Duration("scan-interval", 5*time.Second, "Interval between simulated scans")
	heartbeatInterval := flag.Duration("heartbeat-interval", 5*time.Second, "Interval between heartbeats")
	seed := flag.Int64("seed", 0, "Random seed (0 uses the current time)")
	flag.Parse()

	if *seed == 0 {
		*seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(*seed))

	roster := strings.Split(*tags, ",")
	if len(roster) == 0 {
		log.Fatal("no tags to simulate")
	}

	redisClient := store.NewRedis(*redisAddr)
	q := queue.NewRedisQueue(redisClient.Client, *queueKey)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if !redisClient.Healthy(ctx) {
		log.Fatalf("redis not reachable at %s", *redisAddr)
	}
	log.Printf("simulating reader %s with %d tags (seed %d)", *readerID, len(roster), *seed)

	scanTicker := time.NewTicker(*scanInterval)
	defer scanTicker.Stop()
	heartbeatTicker := time.NewTicker(*heartbeatInterval)
	defer heartbeatTicker.Stop()

	for {
		select {
		case <-heartbeatTicker.C:
			msg, err := queue.NewHeartbeat(queue.HeartbeatPayload{
				ReaderID:  *readerID,
				Timestamp: time.Now().UTC(),
			})
			if err != nil {
				log.Printf("encode heartbeat: %v", err)
				continue
			}
			if err := q.Publish(ctx, msg); err != nil {
				log.Printf("publish heartbeat: %v", err)
			}
		case <-scanTicker.C:
			tag := strings.TrimSpace(roster[rng.Intn(len(roster))])
			msg, err := queue.NewScan(queue.ScanPayload{
				TagID:     tag,
				ReaderID:  *readerID,
				Timestamp: time.Now().UTC(),
			})
			if err != nil {
				log.Printf("encode scan: %v", err)
				continue
			}
			if err := q.Publish(ctx, msg); err != nil {
				log.Printf("publish scan: %v", err)
				continue
			}
			log.Printf("scanned %s", tag)
		case <-ctx.Done():
			log.Println("simulator stopped")
			return
		}
	}
}
