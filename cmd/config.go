package main

import "time"

type Config struct {
	BufferSize        int           `env:"BUFFER_SIZE,default=256"`
	StreamHeadroom    int           `env:"STREAM_HEADROOM,default=128"`
	SinkTimeout       time.Duration `env:"SINK_TIMEOUT,default=2s"`
	RestartInterval   time.Duration `env:"RESTART_INTERVAL,default=200ms"`
	TelemetryInterval time.Duration `env:"TELEMETRY_INTERVAL,default=30s"`

	BadgerFilepath string `env:"BADGER_FILEPATH,required=true"`
	BlugeFilepath  string `env:"BLUGE_FILEPATH,required=true"`
	LogLevel       string `env:"LOG_LEVEL,default=INFO"`

	Room          string `env:"ROOM,default=lobby"`
	SessionToken  string `env:"SESSION_TOKEN,required=true"`
	SessionSecret string `env:"SESSION_SECRET,required=true"`

	SimulatorBaseURL string        `env:"SIMULATOR_BASE_URL,required=true"`
	SimulatorVariant string        `env:"SIMULATOR_VARIANT"`
	TransformTimeout time.Duration `env:"TRANSFORM_TIMEOUT,default=10s"`

	ModerationCharReplacement string `env:"MODERATION_CHARACTER_REPLACEMENT,default=*"`
}
