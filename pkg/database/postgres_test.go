package database

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/acs-institute-api/pkg/config"
)

func TestDSN(t *testing.T) {
	dsn := DSN(config.DatabaseConfig{Host: "db", Port: 5432, User: "acs", Password: "secret", Name: "institute", SSLMode: "disable"})
	assert.Equal(t, "host=db port=5432 user=acs password=secret dbname=institute sslmode=disable", dsn)
}
