package config // package config loads application configuration from environment variables

import (
	"log"
	"os"
	"strconv"

	"github.com/iliyamo/train-seat-booking/internal/model"
)

// Config holds all runtime configuration values.  Each field
// corresponds to an environment variable.  The seating layout is part
// of the configuration on purpose: the coach dimensions are an
// external, one-time input and are never derived from data.
type Config struct {
	Env            string // application environment (e.g. "dev", "prod")
	Port           string // HTTP port to listen on
	DBUser         string // database username
	DBPass         string // database password (optional)
	DBHost         string // database host address
	DBPort         string // database port number
	DBName         string // database name
	JWTSecret      string // secret used to sign JWTs
	AccessTTLMin   int    // access token time-to-live in minutes
	RefreshTTLDays int    // refresh token time-to-live in days
	BcryptCost     int    // bcrypt cost for password hashing

	Layout        model.Layout // fixed seating plan of the coach
	MaxPerBooking int          // seat cap for a single reservation
}

// Load reads configuration from environment variables.  Missing
// required variables abort startup with a fatal log message.  Layout
// variables default to the classic 80-seat coach: 11 rows of 7 seats
// plus a short last row of 3, with at most 7 seats per booking.
func Load() Config {
	return Config{
		Env:            must("APP_ENV"),
		Port:           must("APP_PORT"),
		DBUser:         must("DB_USER"),
		DBPass:         os.Getenv("DB_PASS"), // empty allowed
		DBHost:         must("DB_HOST"),
		DBPort:         must("DB_PORT"),
		DBName:         must("DB_NAME"),
		JWTSecret:      must("JWT_SECRET"),
		AccessTTLMin:   mustInt("ACCESS_TOKEN_TTL_MIN"),
		RefreshTTLDays: mustInt("REFRESH_TOKEN_TTL_DAYS"),
		BcryptCost:     mustInt("BCRYPT_COST"),
		Layout: model.Layout{
			FullRows:     intDefault("LAYOUT_FULL_ROWS", 11),
			SeatsPerRow:  intDefault("LAYOUT_SEATS_PER_ROW", 7),
			LastRowSeats: intDefault("LAYOUT_LAST_ROW_SEATS", 3),
		},
		MaxPerBooking: intDefault("MAX_SEATS_PER_BOOKING", 7),
	}
}

// must retrieves the value of a required environment variable.  If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

// mustInt is like must() but converts the retrieved string into an integer.
func mustInt(key string) int {
	s := must(key)
	n, err := strconv.Atoi(s)
	if err != nil {
		log.Fatalf("invalid int for %s: %q", key, s)
	}
	return n
}

// intDefault reads an optional integer variable, falling back to def
// when unset and aborting on garbage.
func intDefault(key string, def int) int {
	s := os.Getenv(key)
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		log.Fatalf("invalid int for %s: %q", key, s)
	}
	return n
}
