package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/frontandrew/fleet/internal/domain"
	"github.com/frontandrew/fleet/internal/pkg/config"
	"github.com/frontandrew/fleet/internal/pkg/redis"
	"github.com/google/uuid"
)

// Проверка Redis, которым пользуется API: запись и чтение карточки автомобиля
// в формате кэша и сброс по префиксу. Настройки берутся из того же окружения, что и у сервера
func main() {
	cfg, err := config.Load()
	if err != nil {
		fail("load config", err)
	}

	client, err := redis.NewClient(redis.Config{
		Host:     cfg.Redis.Host,
		Port:     cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		fail("connect to Redis", err)
	}
	defer client.Close()
	fmt.Printf("✅ Connected to Redis at %s\n", cfg.Redis.Address())

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	prefix := "fleet:cache-check:" + uuid.NewString() + ":"
	vehicle := &domain.FleetVehicle{
		ID:           uuid.New(),
		Make:         "Toyota",
		Model:        "Corolla",
		LicensePlate: "CHECK001",
		Status:       domain.VehicleStatusAvailable,
		IsActive:     true,
	}
	key := prefix + vehicle.ID.String()

	if err := client.SetJSON(ctx, key, vehicle, time.Minute); err != nil {
		fail("SET", err)
	}
	fmt.Printf("✅ SET %s\n", key)

	var cached domain.FleetVehicle
	if err := client.GetJSON(ctx, key, &cached); err != nil {
		fail("GET", err)
	}
	if cached.LicensePlate != vehicle.LicensePlate || cached.Status != vehicle.Status {
		fail("GET", fmt.Errorf("unexpected value %+v", cached))
	}
	fmt.Printf("✅ GET %s = %s\n", key, cached.DisplayName())

	if err := client.DelByPrefix(ctx, prefix); err != nil {
		fail("DEL by prefix", err)
	}
	if _, err := client.Get(ctx, key); !errors.Is(err, redis.ErrCacheMiss) {
		fail("verify deletion", fmt.Errorf("expected cache miss, got %v", err))
	}
	fmt.Println("✅ Keys deleted by prefix")
}

func fail(step string, err error) {
	fmt.Printf("❌ %s failed: %v\n", step, err)
	os.Exit(1)
}
