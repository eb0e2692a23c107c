package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseStatus(t *testing.T) {
	for _, value := range []string{"To Do", "In Progress", "Done"} {
		status, ok := ParseStatus(value)
		assert.True(t, ok, value)
		assert.Equal(t, Status(value), status)
	}

	for _, value := range []string{"", "todo", "TO DO", "Archived"} {
		_, ok := ParseStatus(value)
		assert.False(t, ok, value)
	}
}

func TestParsePriority(t *testing.T) {
	for _, value := range []string{"Critical", "High", "Medium", "Low"} {
		priority, ok := ParsePriority(value)
		assert.True(t, ok, value)
		assert.Equal(t, Priority(value), priority)
	}

	for _, value := range []string{"", "critical", "Urgent"} {
		_, ok := ParsePriority(value)
		assert.False(t, ok, value)
	}
}
