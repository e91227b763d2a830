package app

import (
	"github.com/williamhatcher/harmonyAuth/internal/config"
	"github.com/williamhatcher/harmonyAuth/internal/discord"
	"github.com/williamhatcher/harmonyAuth/internal/logger"
	"github.com/williamhatcher/harmonyAuth/internal/redis"
)

type Infra struct {
	Redis   *redis.Client
	Discord *discord.Client
}

func setupInfra(cfg config.Config) (*Infra, error) {
	redisClient, err := redis.New(cfg.RedisURL)
	if err != nil {
		return nil, err
	}

	logger.Info("redis ready", nil)

	discordClient := discord.NewClient(cfg.APIBaseURL)

	return &Infra{
		Redis:   redisClient,
		Discord: discordClient,
	}, nil
}
