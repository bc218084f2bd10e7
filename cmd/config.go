package main

import (
	"fmt"
	"time"
)

type Config struct {
	LogLevel             string        `env:"LOG_LEVEL,required=true"`
	Host                 string        `env:"HOST,default=localhost"`
	Port                 int           `env:"PORT,default=8080"`
	BadgerFilepath       string        `env:"BADGER_FILEPATH,required=true"`
	UploadDir            string        `env:"UPLOAD_DIR,required=true"`
	ConnectionBufferSize int           `env:"CONNECTION_BUFFER_SIZE,required=true"`
	JWTSecret            string        `env:"JWT_SECRET,required=true"`
	AuthTokenDuration    time.Duration `env:"AUTH_TOKEN_DURATION,required=true"`
	RestartInterval      time.Duration `env:"RESTART_INTERVAL,required=true"`
	StoreGCInterval      time.Duration `env:"STORE_GC_INTERVAL,required=true"`

	CensoredWordsPath         *string `env:"CENSORED_WORDS_PATH"`
	ModerationCharReplacement string  `env:"MODERATION_CHARACTER_REPLACEMENT,default=*"`
}

func CharacterRune(str string) (rune, error) {
	r := []rune(str)
	if len(r) != 1 {
		return 0, fmt.Errorf(
			"MODERATION_CHARACTER_REPLACEMENT must be a single character, got %q",
			str,
		)
	}
	return r[0], nil
}
