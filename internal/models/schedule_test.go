package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScopeOfDeduplicates(t *testing.T) {
	scope := ScopeOf("c1", "c2", "c1", "", "c2")
	assert.Equal(t, []string{"c1", "c2"}, scope.CourseIDs)
	assert.False(t, scope.All)
}

func TestCourseScopeContains(t *testing.T) {
	assert.True(t, UnrestrictedScope().Contains("anything"))
	assert.False(t, UnrestrictedScope().Empty())

	scope := ScopeOf("c1")
	assert.True(t, scope.Contains("c1"))
	assert.False(t, scope.Contains("c2"))
	assert.True(t, ScopeOf().Empty())
}

func TestIsWeekday(t *testing.T) {
	for _, day := range Weekdays {
		assert.True(t, IsWeekday(day))
	}
	assert.False(t, IsWeekday("monday"))
	assert.False(t, IsWeekday("HOLIDAY"))
}
