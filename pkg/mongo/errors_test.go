package mongo_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	driver "go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/dmitrymomot/teamnames/pkg/mongo"
)

func TestIsDuplicateKeyError(t *testing.T) {
	dup := driver.WriteException{WriteErrors: []driver.WriteError{{Code: 11000, Message: "E11000 duplicate key"}}}
	assert.True(t, mongo.IsDuplicateKeyError(dup))
	assert.True(t, mongo.IsDuplicateKeyError(fmt.Errorf("insert: %w", dup)))

	other := driver.WriteException{WriteErrors: []driver.WriteError{{Code: 2}}}
	assert.False(t, mongo.IsDuplicateKeyError(other))
	assert.False(t, mongo.IsDuplicateKeyError(nil))
}

func TestIsNotFoundError(t *testing.T) {
	assert.True(t, mongo.IsNotFoundError(fmt.Errorf("find: %w", driver.ErrNoDocuments)))
	assert.False(t, mongo.IsNotFoundError(errors.New("boom")))
}

func TestNewRequiresURL(t *testing.T) {
	_, err := mongo.New(context.Background(), mongo.Config{})
	assert.ErrorIs(t, err, mongo.ErrEmptyConnectionURL)
}
