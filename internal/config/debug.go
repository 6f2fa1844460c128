package config

import "os"

func IsDebug() bool {
	return os.Getenv("SYLLABOT_DEBUG") == "1"
}
