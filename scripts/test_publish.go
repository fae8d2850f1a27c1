//go:build ignore

// Publishes one route acquisition job and waits for its result.
//
//	go run scripts/test_publish.go -redis localhost:6380 -categories gas_stations,supermarkets
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mapahead-service/internal/domain"
	"github.com/redis/go-redis/v9"
)

func main() {
	redisAddr := flag.String("redis", "localhost:6380", "Redis address for streams")
	categories := flag.String("categories", "gas_stations", "comma separated POI categories")
	maxDistance := flag.Float64("max-distance", 1.0, "max distance from the route in km")
	wait := flag.Duration("wait", 2*time.Minute, "how long to wait for the result")
	flag.Parse()

	client := redis.NewClient(&redis.Options{
		Addr: *redisAddr,
	})
	defer client.Close()

	ctx := context.Background()

	if err := client.Ping(ctx).Err(); err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}

	// Barcelona, Passeig de Gràcia to Diagonal
	event := domain.RouteAcquireEvent{
		RequestID: uuid.New(),
		Points: []domain.Coordinate{
			{Lat: 41.3870, Lon: 2.1700},
			{Lat: 41.3917, Lon: 2.1649},
			{Lat: 41.3962, Lon: 2.1597},
			{Lat: 41.4003, Lon: 2.1551},
		},
		Categories:    strings.Split(*categories, ","),
		MaxDistanceKm: maxDistance,
	}

	data, err := json.Marshal(event)
	if err != nil {
		log.Fatalf("Failed to marshal event: %v", err)
	}

	// the result may land before we start reading
	startID := fmt.Sprintf("%d-0", time.Now().UnixMilli())

	msgID, err := client.XAdd(ctx, &redis.XAddArgs{
		Stream: domain.StreamRouteAcquire,
		Values: map[string]interface{}{
			"data": string(data),
		},
	}).Result()
	if err != nil {
		log.Fatalf("Failed to publish event: %v", err)
	}

	fmt.Printf("Job published\n")
	fmt.Printf("   Stream: %s\n", domain.StreamRouteAcquire)
	fmt.Printf("   Message ID: %s\n", msgID)
	fmt.Printf("   Request ID: %s\n", event.RequestID)
	fmt.Printf("   Categories: %v\n", event.Categories)
	fmt.Printf("\nWaiting for result in %s...\n", domain.StreamRoutePOIs)

	deadline := time.Now().Add(*wait)
	lastID := startID
	for time.Now().Before(deadline) {
		results, err := client.XRead(ctx, &redis.XReadArgs{
			Streams: []string{domain.StreamRoutePOIs, lastID},
			Count:   10,
			Block:   5 * time.Second,
		}).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				continue
			}
			log.Fatalf("Failed to read results: %v", err)
		}

		for _, stream := range results {
			for _, msg := range stream.Messages {
				lastID = msg.ID

				raw, ok := msg.Values["data"].(string)
				if !ok {
					continue
				}
				var result domain.RoutePOIsEvent
				if err := json.Unmarshal([]byte(raw), &result); err != nil {
					continue
				}
				if result.RequestID != event.RequestID {
					continue
				}

				if result.Error != "" {
					fmt.Printf("\nAcquisition failed: %s\n", result.Error)
					return
				}
				fmt.Printf("\nResult received: %d POIs along %.1f km\n", len(result.POIs), result.TotalKm)
				for _, p := range result.POIs {
					fmt.Printf("   %5.1f km  %-14s %s (%s away)\n", p.DistanceOnRoute, p.Category, p.Name, p.AwayLabel())
				}
				return
			}
		}
	}

	fmt.Println("Timeout waiting for result")
}
