package database

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/artschool-api/pkg/config"
)

func TestDSN(t *testing.T) {
	dsn := DSN(config.DatabaseConfig{
		Host:     "db",
		Port:     5433,
		User:     "school",
		Password: "pw",
		Name:     "artschool",
		SSLMode:  "disable",
	})
	assert.Equal(t, "host=db port=5433 user=school password=pw dbname=artschool sslmode=disable", dsn)
}
