package main

import (
	"crypto/rand"
	"encoding/base64"
	"flag"
	"log"
	"os"
	"strconv"
	"time"
)

type Config struct {
	endpoint              string
	dsn                   string
	logLevel              string
	env                   string
	authSecretKey         string
	queueWait             time.Duration
	requiredConfirmations int
	sweepInterval         time.Duration
}

func generateRandomString(length int) string {
	b := make([]byte, length)
	_, err := rand.Read(b)
	if err != nil {
		panic(err)
	}
	return base64.StdEncoding.EncodeToString(b)
}

func NewConfig() Config {
	var (
		endpoint              string
		dsn                   string
		logLevel              string
		env                   string
		authSecretKey         string
		queueWait             time.Duration
		requiredConfirmations int
		sweepInterval         time.Duration
	)

	flag.StringVar(&endpoint, "a", "localhost:8090", "address and port to run server")
	flag.StringVar(&dsn, "d", "", "data source name for database connection")
	flag.DurationVar(&queueWait, "w", 15*time.Minute, "anti-fraud waiting period before processing")
	flag.IntVar(&requiredConfirmations, "c", 12, "block confirmations required to complete a request")
	flag.DurationVar(&sweepInterval, "i", time.Minute, "interval between pipeline sweeps")
	flag.Parse()

	if address := os.Getenv("RUN_ADDRESS"); address != "" {
		endpoint = address
	}

	if d := os.Getenv("DATABASE_URI"); d != "" {
		dsn = d
	}

	if w := os.Getenv("QUEUE_WAIT"); w != "" {
		parsed, err := time.ParseDuration(w)
		if err != nil {
			log.Printf("WARNING: QUEUE_WAIT is not a valid duration: %s\n", err)
		} else {
			queueWait = parsed
		}
	}

	if c := os.Getenv("REQUIRED_CONFIRMATIONS"); c != "" {
		parsed, err := strconv.Atoi(c)
		if err != nil || parsed <= 0 {
			log.Printf("WARNING: REQUIRED_CONFIRMATIONS has to be a positive integer\n")
		} else {
			requiredConfirmations = parsed
		}
	}

	if i := os.Getenv("SWEEP_INTERVAL"); i != "" {
		parsed, err := time.ParseDuration(i)
		if err != nil {
			log.Printf("WARNING: SWEEP_INTERVAL is not a valid duration: %s\n", err)
		} else {
			sweepInterval = parsed
		}
	}

	if l := os.Getenv("LOG_LEVEL"); l != "" {
		logLevel = l
	} else {
		logLevel = "error"
	}

	if e := os.Getenv("ENV"); e != "" {
		env = e
	} else {
		env = "production"
	}

	if secret := os.Getenv("AUTH_SECRET_KEY"); secret != "" {
		authSecretKey = secret
	} else {
		if env == "production" {
			authSecretKey = generateRandomString(10)
			log.Printf("WARNING: AUTH_SECRET_KEY has to be defined for production environment\n")
		} else {
			authSecretKey = "development-key"
		}
	}

	return Config{
		endpoint,
		dsn,
		logLevel,
		env,
		authSecretKey,
		queueWait,
		requiredConfirmations,
		sweepInterval,
	}
}
