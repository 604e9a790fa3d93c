package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRecalcProgress(t *testing.T) {
	tests := []struct {
		name   string
		points []Point
		want   int
	}{
		{
			name:   "no points means zero",
			points: nil,
			want:   0,
		},
		{
			name:   "none completed",
			points: NewPoints([]string{"a", "b"}),
			want:   0,
		},
		{
			name: "half completed",
			points: []Point{
				{Text: "a", CompletedBy: []string{"uid-1"}},
				{Text: "b", CompletedBy: []string{}},
			},
			want: 50,
		},
		{
			name: "all completed",
			points: []Point{
				{Text: "a", CompletedBy: []string{"uid-1"}},
				{Text: "b", CompletedBy: []string{"uid-2"}},
			},
			want: 100,
		},
		{
			name: "one of three rounds to 33",
			points: []Point{
				{Text: "a", CompletedBy: []string{"uid-1"}},
				{Text: "b", CompletedBy: []string{}},
				{Text: "c", CompletedBy: []string{}},
			},
			want: 33,
		},
		{
			name: "two of three rounds to 67",
			points: []Point{
				{Text: "a", CompletedBy: []string{"uid-1"}},
				{Text: "b", CompletedBy: []string{"uid-1"}},
				{Text: "c", CompletedBy: []string{}},
			},
			want: 67,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			task := Task{Points: tt.points}
			task.RecalcProgress()
			assert.Equal(t, tt.want, task.Progress)
		})
	}
}

func TestPointTick_Idempotent(t *testing.T) {
	p := Point{Text: "a", CompletedBy: []string{}}

	p.Tick("uid-1")
	p.Tick("uid-1")
	assert.Equal(t, []string{"uid-1"}, p.CompletedBy)

	p.Tick("uid-2")
	assert.Equal(t, []string{"uid-1", "uid-2"}, p.CompletedBy)
	assert.True(t, p.Completed())
}

func TestPointUntick(t *testing.T) {
	p := Point{Text: "a", CompletedBy: []string{"uid-1", "uid-2"}}

	p.Untick("uid-1")
	assert.Equal(t, []string{"uid-2"}, p.CompletedBy)
	assert.True(t, p.Completed())

	// absent uid is a no-op
	p.Untick("uid-3")
	assert.Equal(t, []string{"uid-2"}, p.CompletedBy)

	p.Untick("uid-2")
	assert.False(t, p.Completed())
}

func TestValidStatus(t *testing.T) {
	for _, s := range []string{StatusToday, StatusThisWeek, StatusThisMonth, StatusLater, StatusDone, StatusCanceled} {
		assert.True(t, ValidStatus(s), s)
	}
	assert.False(t, ValidStatus("archived"))
	assert.False(t, ValidStatus(""))
}

func TestUserSummary_HidesPasswordHash(t *testing.T) {
	u := User{
		UID:          "uid-1",
		Username:     "alice",
		Email:        "alice@example.com",
		PasswordHash: "$2a$10$abcdef",
		Role:         RoleAdmin,
	}
	sum := u.Summary()
	assert.Equal(t, "alice", sum.Username)
	assert.True(t, sum.IsAdmin)
}
