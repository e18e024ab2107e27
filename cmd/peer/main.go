package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/syncwatch/server/internal/app"
)

type configVar[T any] struct {
	envKey       string
	flagKey      string
	defaultValue T
}

var (
	sessionId = configVar[string]{
		envKey:       "PEER_SESSION_ID",
		flagKey:      "session-id",
		defaultValue: "",
	}
	participantId = configVar[string]{
		envKey:       "PEER_PARTICIPANT_ID",
		flagKey:      "participant-id",
		defaultValue: "",
	}
	relayURL = configVar[string]{
		envKey:       "PEER_RELAY_URL",
		flagKey:      "relay-url",
		defaultValue: "ws://localhost:8080",
	}
	videosURL = configVar[string]{
		envKey:       "PEER_VIDEOS_URL",
		flagKey:      "videos-url",
		defaultValue: "",
	}
	clothingURL = configVar[string]{
		envKey:       "PEER_CLOTHING_URL",
		flagKey:      "clothing-url",
		defaultValue: "",
	}
	logLevel = configVar[string]{
		envKey:       "PEER_LOG_LEVEL",
		flagKey:      "log-level",
		defaultValue: "INFO",
	}
	redisPort = configVar[int]{
		envKey:       "REDIS_PORT",
		flagKey:      "redis-port",
		defaultValue: 6379,
	}
	redisHost = configVar[string]{
		envKey:       "REDIS_HOST",
		flagKey:      "redis-host",
		defaultValue: "localhost",
	}
	redisPassword = configVar[string]{
		envKey:       "REDIS_PASSWORD",
		flagKey:      "redis-password",
		defaultValue: "",
	}
)

func loadAppConfig() *app.AppConfig {
	pflag.String(sessionId.flagKey, sessionId.defaultValue, "Session id shared by all participants")
	pflag.String(participantId.flagKey, participantId.defaultValue, "Participant id (relay assigns one when empty)")
	pflag.String(relayURL.flagKey, relayURL.defaultValue, "Broadcast relay URL")
	pflag.String(videosURL.flagKey, videosURL.defaultValue, "Videos feed URL")
	pflag.String(clothingURL.flagKey, clothingURL.defaultValue, "Clothing feed URL")
	pflag.String(logLevel.flagKey, logLevel.defaultValue, "Logging level")
	pflag.Int(redisPort.flagKey, redisPort.defaultValue, "Redis port")
	pflag.String(redisHost.flagKey, redisHost.defaultValue, "Redis host")
	pflag.String(redisPassword.flagKey, redisPassword.defaultValue, "Redis password")
	pflag.Parse()

	viper.BindPFlags(pflag.CommandLine)

	viper.BindEnv(sessionId.flagKey, sessionId.envKey)
	viper.BindEnv(participantId.flagKey, participantId.envKey)
	viper.BindEnv(relayURL.flagKey, relayURL.envKey)
	viper.BindEnv(videosURL.flagKey, videosURL.envKey)
	viper.BindEnv(clothingURL.flagKey, clothingURL.envKey)
	viper.BindEnv(logLevel.flagKey, logLevel.envKey)
	viper.BindEnv(redisPort.flagKey, redisPort.envKey)
	viper.BindEnv(redisHost.flagKey, redisHost.envKey)
	viper.BindEnv(redisPassword.flagKey, redisPassword.envKey)

	viper.SetDefault(sessionId.flagKey, sessionId.defaultValue)
	viper.SetDefault(participantId.flagKey, participantId.defaultValue)
	viper.SetDefault(relayURL.flagKey, relayURL.defaultValue)
	viper.SetDefault(videosURL.flagKey, videosURL.defaultValue)
	viper.SetDefault(clothingURL.flagKey, clothingURL.defaultValue)
	viper.SetDefault(logLevel.flagKey, logLevel.defaultValue)
	viper.SetDefault(redisPort.flagKey, redisPort.defaultValue)
	viper.SetDefault(redisHost.flagKey, redisHost.defaultValue)
	viper.SetDefault(redisPassword.flagKey, redisPassword.defaultValue)

	return &app.AppConfig{
		SessionId:     viper.GetString(sessionId.flagKey),
		ParticipantId: viper.GetString(participantId.flagKey),
		RelayURL:      viper.GetString(relayURL.flagKey),
		VideosURL:     viper.GetString(videosURL.flagKey),
		ClothingURL:   viper.GetString(clothingURL.flagKey),
		LogLevel:      viper.GetString(logLevel.flagKey),
		RedisPort:     viper.GetInt(redisPort.flagKey),
		RedisHost:     viper.GetString(redisHost.flagKey),
		RedisPassword: viper.GetString(redisPassword.flagKey),
	}
}

func main() {
	ctx := context.Background()

	appConfig := loadAppConfig()

	jsonConfig, _ := json.MarshalIndent(appConfig, "", "  ")
	fmt.Printf("starting peer with config: %s\n", jsonConfig)

	log.Fatal(app.Run(ctx, appConfig))
}
